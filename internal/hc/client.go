// SPDX-License-Identifier: GPL-3.0-or-later

package hc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// DefaultTimeout is the default bound on a single request/response
// exchange (spec.md §4.E).
const DefaultTimeout = 5 * time.Second

// PerformLogin runs the LOGIN exchange directly on conn. It is used as
// the [Config.Login] hook: login happens before the transport's
// steady-state read loop starts, so it does its own single-line
// request/response instead of going through [*Client].
func PerformLogin(ctx context.Context, conn net.Conn, user, pass string) error {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	if _, err := conn.Write([]byte(fmt.Sprintf("LOGIN %s %s\r\n", user, pass))); err != nil {
		return verror.New(verror.KindConnect, "hc.PerformLogin", err)
	}
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		return verror.New(verror.KindConnect, "hc.PerformLogin", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "R:LOGIN") {
		return verror.New(verror.KindProtocol, "hc.PerformLogin", fmt.Errorf("hc: unexpected login response %q", line))
	}
	result := strings.TrimSpace(strings.TrimPrefix(line, "R:LOGIN"))
	if !strings.EqualFold(result, "Success") && !strings.EqualFold(result, "true") {
		return verror.New(verror.KindAuth, "hc.PerformLogin", errors.New("hc: bad credentials"))
	}
	return nil
}

// ClientConfig configures a [*Client].
type ClientConfig struct {
	Dial           func(ctx context.Context) (net.Conn, error)
	Login          func(ctx context.Context, conn net.Conn) error
	OnResync       func(ctx context.Context)
	OnStatus       func(line string)
	OnEllog        func(line string)
	OnDisconnected func()
	OnFatal        func(err error)

	Logger          vlog.SLogger
	ErrClassifier   verror.ErrClassifier
	TimeNow         func() time.Time
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Timeout bounds a single request/response exchange. Defaults to
	// [DefaultTimeout].
	Timeout time.Duration
}

// responseWaiter is the single outstanding request's mailbox.
type responseWaiter struct {
	ch        chan string
	abandoned atomic.Bool
}

// Client implements the pipelined FIFO command request/response
// correlation described by spec.md §4.E: at most one outstanding request
// at a time on the underlying [*Transport].
//
// Construct with [NewClient]; call [*Client.Run] in its own goroutine to
// drive the connection, then issue requests with [*Client.Invoke] or the
// typed helpers in verbs.go.
type Client struct {
	transport *Transport
	logger    vlog.SLogger

	reqMu     sync.Mutex // serializes requests: only one outstanding
	curWaiter atomic.Pointer[responseWaiter]

	mu           sync.Mutex
	disconnected chan struct{}

	onDisconnected func()
	timeout        time.Duration
}

// NewClient returns a [*Client] wired to a fresh [*Transport] built from
// cfg. Call [*Client.Run] to start it.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = vlog.DefaultSLogger()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		logger:       logger,
		disconnected: make(chan struct{}),
		timeout:      timeout,
	}

	c.onDisconnected = cfg.OnDisconnected
	c.transport = New(Config{
		Dial:            cfg.Dial,
		Login:           cfg.Login,
		OnResponse:      c.handleResponse,
		OnStatus:        cfg.OnStatus,
		OnEllog:         cfg.OnEllog,
		OnResync:        cfg.OnResync,
		OnDisconnected:  c.handleDisconnected,
		OnFatal:         cfg.OnFatal,
		Logger:          cfg.Logger,
		ErrClassifier:   cfg.ErrClassifier,
		TimeNow:         cfg.TimeNow,
		InitialInterval: cfg.InitialInterval,
		MaxInterval:     cfg.MaxInterval,
	})
	return c
}

// Run drives the underlying transport until ctx is cancelled. Call it in
// its own goroutine.
func (c *Client) Run(ctx context.Context) {
	c.transport.Run(ctx)
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.transport.Close()
}

// WaitReady blocks until the client has an active, logged-in, resynced
// connection, or ctx is done.
func (c *Client) WaitReady(ctx context.Context) error {
	return c.transport.WaitReady(ctx)
}

func (c *Client) handleResponse(line string) {
	w := c.curWaiter.Load()
	if w == nil {
		c.logger.Warn("hcResponseWithoutRequest", slog.String("line", line))
		return
	}
	if w.abandoned.Load() {
		c.logger.Warn("hcLateResponseDropped", slog.String("line", line))
		return
	}
	select {
	case w.ch <- line:
	default:
	}
}

func (c *Client) handleDisconnected() {
	c.mu.Lock()
	close(c.disconnected)
	c.disconnected = make(chan struct{})
	c.mu.Unlock()

	if w := c.curWaiter.Load(); w != nil {
		w.abandoned.Store(true)
		select {
		case w.ch <- "":
		default:
		}
	}

	if c.onDisconnected != nil {
		c.onDisconnected()
	}
}

func (c *Client) disconnectedChan() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

// request sends verb and waits for the matching response line, enforcing
// the single-outstanding-request rule and the per-request timeout. It
// does not tear down the connection on timeout (spec.md §4.E): the
// waiter is marked abandoned so a late response is dropped with a
// warning instead of corrupting the next request's correlation.
func (c *Client) request(ctx context.Context, verb string) (string, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	if err := c.transport.WaitReady(ctx); err != nil {
		return "", err
	}

	w := &responseWaiter{ch: make(chan string, 1)}
	c.curWaiter.Store(w)
	defer c.curWaiter.CompareAndSwap(w, nil)

	if err := c.transport.Write(ctx, verb); err != nil {
		return "", err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case line := <-w.ch:
		if w.abandoned.Load() {
			return "", verror.New(verror.KindDisconnected, "hc.Client.request", errors.New("hc: connection lost"))
		}
		return line, nil
	case <-timer.C:
		w.abandoned.Store(true)
		return "", verror.New(verror.KindTimeout, "hc.Client.request", errors.New("hc: no response within timeout"))
	case <-c.disconnectedChan():
		w.abandoned.Store(true)
		return "", verror.New(verror.KindDisconnected, "hc.Client.request", errors.New("hc: disconnected"))
	case <-ctx.Done():
		w.abandoned.Store(true)
		return "", verror.New(verror.KindCancelled, "hc.Client.request", ctx.Err())
	}
}

// Invoke is the generic request/response primitive backing every typed
// helper in verbs.go: it sends "INVOKE <vid> <method> <args...>" and
// returns the result tokens from the matching "INVOKE <vid> <method>
// <result...>" response.
func (c *Client) Invoke(ctx context.Context, vid int, method string, args ...string) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "INVOKE %d %s", vid, method)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	line, err := c.request(ctx, b.String())
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "INVOKE" {
		return nil, verror.New(verror.KindProtocol, "hc.Client.Invoke", fmt.Errorf("hc: unexpected response %q", line))
	}
	wantVID := strconv.Itoa(vid)
	if fields[1] != wantVID {
		return nil, verror.New(verror.KindProtocol, "hc.Client.Invoke", fmt.Errorf("hc: response VID mismatch: got %s want %s", fields[1], wantVID))
	}
	// fields[2] is the method name; remainder is the result.
	if len(fields) < 3 {
		return nil, nil
	}
	return fields[3:], nil
}

// RawCommand sends one raw command line, such as the STATUS/ADDSTATUS/
// ELENABLE/ELLOG commands used by internal/events, and returns its
// response line. Exposed at the hc.Client level because it shares the
// same request/response correlation as Invoke.
func (c *Client) RawCommand(ctx context.Context, verb string) (string, error) {
	return c.request(ctx, verb)
}
