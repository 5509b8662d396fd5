// SPDX-License-Identifier: GPL-3.0-or-later

// Package verror implements the client's error taxonomy.
//
// spec.md §7 names the error kinds a caller can observe: connect, auth,
// protocol, not-found, timeout, disconnected, cancelled, and decode. These
// are kinds, not Go types — a single [Error] struct tags each occurrence
// with a [Kind] so callers can branch with [IsKind], with [errors.Is]
// against any [*Error] of the same kind, or inspect [Error.Kind] directly.
package verror

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error].
type Kind string

// The error kinds from spec.md §7.
const (
	// KindConnect covers DNS, TCP, and TLS-handshake dial failures.
	// Retried internally by the line transport; not fatal to a session
	// unless retries are exhausted.
	KindConnect Kind = "connect"

	// KindAuth covers a rejected login. Fatal to the session: no retry.
	KindAuth Kind = "auth"

	// KindProtocol covers a malformed frame or unexpected response verb.
	// The connection is torn down and retried once; a second occurrence
	// is fatal.
	KindProtocol Kind = "protocol"

	// KindNotFound covers a VID unknown to a controller. Returned to the
	// caller; never fatal.
	KindNotFound Kind = "not-found"

	// KindTimeout covers a request that received no response within the
	// configured bound. Returned to the caller; the connection stays open.
	KindTimeout Kind = "timeout"

	// KindDisconnected covers an in-flight request abandoned because the
	// transport reconnected. Returned to the caller, who may retry.
	KindDisconnected Kind = "disconnected"

	// KindCancelled covers a request abandoned because its context was
	// done. Closing a session does not produce it: a Host Command request
	// in flight at that moment fails with [KindDisconnected].
	KindCancelled Kind = "cancelled"

	// KindDecode covers a state line that could not be parsed against its
	// kind's schema. Logged at Warn; never surfaced to a caller.
	KindDecode Kind = "decode"
)

// Error is the concrete error type returned by every layer of the client.
type Error struct {
	// Kind is the error's taxonomy bucket.
	Kind Kind

	// Op names the operation that failed (e.g. "aci.Login", "hc.SetLevel").
	Op string

	// Cause is the underlying error, if any.
	Cause error
}

// New constructs an [*Error] with the given kind, operation name, and
// optional cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes the underlying cause for [errors.Is]/[errors.As].
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an [*Error] with the same [Kind], so that
// callers can write `errors.Is(err, verror.New(verror.KindTimeout, "", nil))`
// or, more conveniently, use [IsKind].
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// IsKind reports whether err is a [*Error] of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
