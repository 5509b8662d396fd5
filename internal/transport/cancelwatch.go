// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"net"
)

// NewCancelWatchFunc returns a new [*CancelWatchFunc].
func NewCancelWatchFunc() *CancelWatchFunc {
	return &CancelWatchFunc{}
}

// CancelWatchFunc closes a channel's connection when [Dial]'s context is
// done, so cancelling the session's open context or hitting its timeout
// interrupts an in-progress dial or handshake immediately rather than
// waiting for a TCP-level timeout.
//
// The returned connection wraps the input connection. Closing the returned
// connection unregisters the context watcher and closes the underlying
// connection, so no goroutine leaks even if the context is never cancelled.
type CancelWatchFunc struct{}

// Call registers a context watcher using [context.AfterFunc] that closes
// the connection when the context is done. The returned [net.Conn] wraps
// the input: closing it unregisters the watcher and closes the underlying
// connection.
func (op *CancelWatchFunc) Call(ctx context.Context, conn net.Conn) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	return &cancelWatchedConn{Conn: conn, stop: stop}, nil
}

// cancelWatchedConn wraps a [net.Conn] with a context cancellation watcher.
type cancelWatchedConn struct {
	net.Conn
	stop func() bool
}

// Close unregisters the context watcher and closes the underlying connection.
func (c *cancelWatchedConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
