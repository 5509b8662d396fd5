// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (single-owner-goroutine I/O
// pattern, SLogger/ErrClassifier/TimeNow injection, context-transparent
// suspension points)

package hc

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// Config configures a [*Transport].
type Config struct {
	// Dial opens a fresh connection to the controller's command service.
	// Called once per (re)connect attempt.
	Dial func(ctx context.Context) (net.Conn, error)

	// Login performs the LOGIN exchange on a freshly dialed connection.
	// Returning an error with [verror.KindAuth] is treated as fatal: the
	// transport stops retrying and reports it via OnFatal.
	Login func(ctx context.Context, conn net.Conn) error

	// OnResponse is invoked, in arrival order, for every R: line with the
	// "R:" prefix stripped.
	OnResponse func(line string)

	// OnStatus is invoked for every S: line with the "S:" prefix stripped.
	OnStatus func(line string)

	// OnEllog is invoked for every EL: line with the "EL:" prefix stripped.
	OnEllog func(line string)

	// OnResync is invoked exactly once after a successful (re)connect and
	// login, before the transport admits any new write. Subscriptions are
	// re-installed here (internal/events).
	OnResync func(ctx context.Context)

	// OnDisconnected is invoked when the transport drops its connection,
	// before it begins backing off and redialing.
	OnDisconnected func()

	// OnFatal is invoked when the transport gives up permanently (fatal
	// auth failure, or two consecutive protocol errors per spec.md §7).
	OnFatal func(err error)

	// Logger is the structured logger to use.
	Logger vlog.SLogger

	// ErrClassifier classifies errors for structured logging.
	ErrClassifier verror.ErrClassifier

	// TimeNow returns the current time (overridable for testing).
	TimeNow func() time.Time

	// InitialInterval and MaxInterval bound the reconnect backoff.
	// Defaults: 1s / 60s (spec.md §4.D), jitter ±20%.
	InitialInterval, MaxInterval time.Duration
}

func (cfg *Config) setDefaults() {
	if cfg.Logger == nil {
		cfg.Logger = vlog.DefaultSLogger()
	}
	if cfg.ErrClassifier == nil {
		cfg.ErrClassifier = verror.DefaultErrClassifier
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 1 * time.Second
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 60 * time.Second
	}
	noop := func(string) {}
	if cfg.OnResponse == nil {
		cfg.OnResponse = noop
	}
	if cfg.OnStatus == nil {
		cfg.OnStatus = noop
	}
	if cfg.OnEllog == nil {
		cfg.OnEllog = noop
	}
	if cfg.OnResync == nil {
		cfg.OnResync = func(context.Context) {}
	}
	if cfg.OnDisconnected == nil {
		cfg.OnDisconnected = func() {}
	}
	if cfg.OnFatal == nil {
		cfg.OnFatal = func(error) {}
	}
}

// Transport owns a single reconnecting Host Command line socket.
//
// One goroutine (started by [*Transport.Run]) performs all socket I/O:
// dialing, logging in, running the resync hook, and reading lines. Writes
// from other goroutines are serialized by an internal mutex and handed
// directly to the current connection.
//
// Construct with [New].
type Transport struct {
	cfg Config

	mu      sync.Mutex
	conn    net.Conn
	ready   chan struct{}
	closed  bool
	protoErrs int
}

// New returns a [*Transport] ready to [Run].
func New(cfg Config) *Transport {
	cfg.setDefaults()
	return &Transport{cfg: cfg, ready: make(chan struct{})}
}

// Run drives the connect/read/reconnect loop until ctx is cancelled or a
// fatal condition occurs. Call it in its own goroutine.
func (t *Transport) Run(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.cfg.InitialInterval
	b.MaxInterval = t.cfg.MaxInterval
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0

	for {
		if ctx.Err() != nil {
			return
		}
		if err := t.connectAndServe(ctx); err != nil {
			if verror.IsKind(err, verror.KindAuth) {
				t.cfg.OnFatal(err)
				return
			}
			t.mu.Lock()
			if verror.IsKind(err, verror.KindProtocol) {
				t.protoErrs++
			} else {
				t.protoErrs = 0
			}
			fatal := t.protoErrs >= 2
			t.mu.Unlock()
			if fatal {
				t.cfg.OnFatal(err)
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		t.cfg.OnDisconnected()
		wait := b.NextBackOff()
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// connectAndServe performs one dial+login+resync+read cycle, returning
// when the connection drops or the context is cancelled.
func (t *Transport) connectAndServe(ctx context.Context) error {
	conn, err := t.cfg.Dial(ctx)
	if err != nil {
		return verror.New(verror.KindConnect, "hc.Transport.connectAndServe", err)
	}
	if t.cfg.Login != nil {
		if err := t.cfg.Login(ctx, conn); err != nil {
			conn.Close()
			return err
		}
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	t.cfg.OnResync(ctx)

	// Mark ready by closing the channel allocated the last time we went
	// not-ready (or the zero-value one from [New]). We do NOT replace it
	// here: replacing happens only when we go not-ready again, so steady-
	// state WaitReady calls observe an already-closed channel and return
	// immediately instead of waiting for the next reconnect cycle.
	t.mu.Lock()
	close(t.ready)
	t.mu.Unlock()

	defer func() {
		conn.Close()
		t.mu.Lock()
		if t.conn == conn {
			t.conn = nil
		}
		t.ready = make(chan struct{})
		t.mu.Unlock()
	}()

	return t.readLoop(conn)
}

func (t *Transport) readLoop(conn net.Conn) error {
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return verror.New(verror.KindDisconnected, "hc.Transport.readLoop", err)
		}
		line = strings.TrimRight(line, "\r\n")
		t.cfg.Logger.Debug("hcLine", slog.String("line", line))

		switch {
		case strings.HasPrefix(line, "R:"):
			t.cfg.OnResponse(strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "EL:"):
			t.cfg.OnEllog(strings.TrimSpace(line[3:]))
		case strings.HasPrefix(line, "S:"):
			t.cfg.OnStatus(strings.TrimSpace(line[2:]))
		default:
			return verror.New(verror.KindProtocol, "hc.Transport.readLoop", unclassifiedLineError(line))
		}
	}
}

type unclassifiedLineError string

func (e unclassifiedLineError) Error() string {
	return "hc: unclassified line: " + string(e)
}

// WaitReady blocks until the transport has an active, logged-in, resynced
// connection, or ctx is done.
func (t *Transport) WaitReady(ctx context.Context) error {
	t.mu.Lock()
	ready := t.ready
	t.mu.Unlock()
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return verror.New(verror.KindCancelled, "hc.Transport.WaitReady", ctx.Err())
	}
}

// Write sends a single CRLF-terminated command line on the current
// connection. Returns [verror.KindDisconnected] if there is no active
// connection.
func (t *Transport) Write(ctx context.Context, line string) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return verror.New(verror.KindDisconnected, "hc.Transport.Write", errNotConnected)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	_, err := conn.Write([]byte(line + "\r\n"))
	if err != nil {
		return verror.New(verror.KindDisconnected, "hc.Transport.Write", err)
	}
	return nil
}

var errNotConnected = errors.New("hc: not connected")

// Close marks the transport closed. [*Transport.Run] observes context
// cancellation separately; Close only releases the current socket.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
