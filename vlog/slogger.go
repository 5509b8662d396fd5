// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (slogger.go)

// Package vlog provides the structured logging abstraction shared by every
// layer of the client: transport, ACI, Host Command, events, and
// controllers all log through [SLogger] rather than talking to [log/slog]
// directly.
package vlog

// SLogger abstracts the [*slog.Logger] behavior.
//
// By using an abstraction we allow for unit testing and alternative
// implementations without pulling log/slog into every package's test
// dependencies.
//
// This package uses three log levels:
//   - Info for lifecycle and protocol events (connect, close, TLS handshake,
//     login, filter open/close, command request/response, subscription
//     state transitions)
//   - Debug for per-I/O events (read, write, set deadline, reconnect backoff)
//   - Warn for tolerated protocol anomalies (unknown kind, unknown
//     interface method, decode failure) that spec.md §7 classifies as
//     "decode" errors: logged, never surfaced to the caller
//
// The [*slog.Logger] type satisfies this interface.
type SLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// DefaultSLogger returns the default [SLogger] to use.
//
// The default is a no-op logger that discards all output. This follows the
// library convention of not writing to stdout/stderr unless explicitly
// configured.
//
// Use a custom [*slog.Logger] for emitting logs.
func DefaultSLogger() SLogger {
	return discardSLogger{}
}

// discardSLogger is a no-op [SLogger] that discards all log messages.
type discardSLogger struct{}

var _ SLogger = discardSLogger{}

// Debug implements [SLogger].
func (discardSLogger) Debug(msg string, args ...any) {
	// nothing
}

// Info implements [SLogger].
func (discardSLogger) Info(msg string, args ...any) {
	// nothing
}

// Warn implements [SLogger].
func (discardSLogger) Warn(msg string, args ...any) {
	// nothing
}
