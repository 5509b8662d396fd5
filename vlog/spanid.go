// SPDX-License-Identifier: GPL-3.0-or-later

package vlog

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying one traceable operation: a TLS
// dial, a filter enumeration, a command request, a subscription. Attach it
// to a logger with [*slog.Logger.With] so every record for that operation
// shares the same spanID.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
