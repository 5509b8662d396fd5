// SPDX-License-Identifier: GPL-3.0-or-later

package vantage

import (
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// SLogger is the structured-logging interface every layer of the session
// logs through. Alias of [vlog.SLogger] so callers never need to import
// the internal-adjacent package directly.
type SLogger = vlog.SLogger

// ErrClassifier classifies errors into categorical strings for structured
// logging. Alias of [verror.ErrClassifier].
type ErrClassifier = verror.ErrClassifier

// Error is the error type every session operation returns. Alias of
// [verror.Error].
type Error = verror.Error

// Kind classifies an [Error]. Alias of [verror.Kind]. See the Kind*
// constants below for spec.md §7's taxonomy.
type Kind = verror.Kind

// The error kinds an operation on a [Session] can return (spec.md §7).
const (
	KindConnect      = verror.KindConnect
	KindAuth         = verror.KindAuth
	KindProtocol     = verror.KindProtocol
	KindNotFound     = verror.KindNotFound
	KindTimeout      = verror.KindTimeout
	KindDisconnected = verror.KindDisconnected
	KindCancelled    = verror.KindCancelled
	KindDecode       = verror.KindDecode
)

// NewSpanID returns a UUIDv7 identifying one traceable operation, for
// callers correlating their own log records with a session's.
func NewSpanID() string {
	return vlog.NewSpanID()
}
