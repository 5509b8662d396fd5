// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"log/slog"

	"github.com/go-vantage/vantage/vlog"
)

// ApplyState routes one "Interface.Method" state event to v's registered
// decoder. An unknown kind or method is logged as a warning and ignored
// (spec.md §4.G), not returned as an error: a single unrecognized event
// must never interrupt the dispatcher's delivery loop for every other
// subscriber.
func ApplyState(v Variant, interfaceMethod string, args []string, logger vlog.SLogger) {
	if logger == nil {
		logger = vlog.DefaultSLogger()
	}
	kind := v.Base().Kind
	def, ok := registry[kind]
	if !ok {
		logger.Warn("objectsUnknownKind", slog.String("kind", string(kind)))
		return
	}
	for _, sb := range def.States {
		if sb.Method != interfaceMethod {
			continue
		}
		if err := sb.Decode(v, args); err != nil {
			logger.Warn("objectsStateDecodeFailed",
				slog.String("kind", string(kind)),
				slog.String("method", interfaceMethod),
				slog.String("error", err.Error()))
		}
		return
	}
	logger.Warn("objectsUnknownMethod",
		slog.String("kind", string(kind)),
		slog.String("method", interfaceMethod))
}
