// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop (ConnectFunc/TLSHandshakeFunc
// start/done logging pattern, SLogger/ErrClassifier/TimeNow injection)

package aci

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// DefaultPageSize is the number of objects requested per
// get_filter_results call during lazy enumeration (spec.md §4.C).
const DefaultPageSize = 50

// ErrAuthRequired is returned by [*Client.call] when the controller's
// response carries the auth-required marker in place of a normal return
// value: a call was attempted before logging in.
var ErrAuthRequired = errors.New("aci: authentication required")

// ErrBadCredentials is returned by [*Client.Login] when the controller
// rejects the supplied username/password.
var ErrBadCredentials = errors.New("aci: bad credentials")

// Client speaks the ACI config protocol over a single connection: request
// frames are written and responses read strictly in turn (the config
// channel, like the command channel, never pipelines more than one
// in-flight exchange — see [internal/hc].
//
// Construct with [NewClient]. Safe for concurrent use: calls are
// serialized internally.
type Client struct {
	conn          net.Conn
	fr            *FrameReader
	mu            sync.Mutex
	logger        vlog.SLogger
	errClassifier verror.ErrClassifier
	timeNow       func() time.Time

	username, password string
}

// NewClient returns a [*Client] that reads and writes frames over conn.
//
// conn is expected to already be dialed and, if applicable, TLS-wrapped
// (see internal/transport.Dial); [*Client] owns no dial/reconnect policy
// of its own — the config channel is opened fresh per session per
// spec.md §5 ("at most one filter handle per in-progress enumeration").
func NewClient(conn net.Conn, logger vlog.SLogger, errClassifier verror.ErrClassifier, timeNow func() time.Time) *Client {
	if logger == nil {
		logger = vlog.DefaultSLogger()
	}
	if errClassifier == nil {
		errClassifier = verror.DefaultErrClassifier
	}
	if timeNow == nil {
		timeNow = time.Now
	}
	return &Client{
		conn:          conn,
		fr:            NewFrameReader(conn),
		logger:        logger,
		errClassifier: errClassifier,
		timeNow:       timeNow,
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SetCredentials records user/pass for a later lazy login, without
// attempting to log in now. Used when a session is opened without
// credentials being supplied eagerly (spec.md §4.C): the first call that
// comes back auth-required triggers exactly one login+retry using
// whatever was last recorded here.
func (c *Client) SetCredentials(user, pass string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username, c.password = user, pass
}

// call writes a single request frame and reads the matching response
// frame, returning the decoded root [Element]. If the response is the
// auth-required marker, it logs in once with the last credentials
// recorded via [*Client.Login] or [*Client.SetCredentials] and retries the
// call once before giving up (spec.md §4.C).
func (c *Client) call(ctx context.Context, iface, method string, callBody []byte) (*Element, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callLocked(ctx, iface, method, callBody, true)
}

// callLocked is [*Client.call] without acquiring c.mu; callers must already
// hold it. allowAuthRetry guards against retrying the retry: the login
// attempt and the single retried call both pass false.
func (c *Client) callLocked(ctx context.Context, iface, method string, callBody []byte, allowAuthRetry bool) (*Element, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	req := buildRequest(iface, method, callBody)
	t0 := c.timeNow()
	c.logger.Info("aciCallStart", slog.String("interface", iface), slog.String("method", method), slog.Time("t", t0))

	if err := WriteFrame(c.conn, req); err != nil {
		c.logger.Info("aciCallDone", slog.String("interface", iface), slog.String("method", method),
			slog.Any("err", err), slog.String("errClass", c.errClassifier.Classify(err)))
		return nil, verror.New(verror.KindConnect, "aci.Client.call", err)
	}

	frame, err := c.fr.ReadFrame()
	if err != nil {
		c.logger.Info("aciCallDone", slog.String("interface", iface), slog.String("method", method),
			slog.Any("err", err), slog.String("errClass", c.errClassifier.Classify(err)))
		return nil, verror.New(verror.KindConnect, "aci.Client.call", err)
	}

	var root Element
	if err := xml.Unmarshal(frame, &root); err != nil {
		c.logger.Info("aciCallDone", slog.String("interface", iface), slog.String("method", method), slog.Any("err", err))
		return nil, verror.New(verror.KindDecode, "aci.Client.call", err)
	}
	c.logger.Info("aciCallDone", slog.String("interface", iface), slog.String("method", method), slog.Time("t", c.timeNow()))

	if root.XMLName.Local != iface {
		return nil, verror.New(verror.KindProtocol, "aci.Client.call",
			fmt.Errorf("aci: expected response interface %q, got %q", iface, root.XMLName.Local))
	}
	methodEl, ok := root.Child(method)
	if !ok {
		return nil, verror.New(verror.KindProtocol, "aci.Client.call",
			fmt.Errorf("aci: response missing method element %q", method))
	}
	ret, ok := methodEl.Child("return")
	if !ok {
		return nil, verror.New(verror.KindProtocol, "aci.Client.call",
			errors.New("aci: response missing <return> element"))
	}
	if strings.TrimSpace(ret.Text) == "auth-required" {
		if allowAuthRetry && !(iface == "ILogin" && method == "Login") {
			if loginErr := c.loginLocked(ctx); loginErr == nil {
				return c.callLocked(ctx, iface, method, callBody, false)
			}
		}
		return nil, verror.New(verror.KindAuth, "aci.Client.call", ErrAuthRequired)
	}
	return ret, nil
}

// buildRequest wraps callBody (the already-encoded contents of <call>) in
// the <IInterface><Method>...</Method></IInterface> envelope.
func buildRequest(iface, method string, callBody []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<%s><%s><call>", iface, method)
	buf.Write(callBody)
	fmt.Fprintf(&buf, "</call></%s></%s>", method, iface)
	return buf.Bytes()
}

// escapeParam XML-escapes a single parameter value and wraps it in a
// named element, e.g. escapeParam("User", "dave") -> "<User>dave</User>".
func escapeParam(name, value string) string {
	var buf bytes.Buffer
	buf.WriteByte('<')
	buf.WriteString(name)
	buf.WriteByte('>')
	xml.EscapeText(&buf, []byte(value))
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
	return buf.String()
}

// Login authenticates with user/pass. Returns [ErrBadCredentials] wrapped
// with [verror.KindAuth] if the controller rejects the credentials.
func (c *Client) Login(ctx context.Context, user, pass string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username, c.password = user, pass
	return c.loginLocked(ctx)
}

// loginLocked performs the login exchange using the last recorded
// credentials. Callers must already hold c.mu.
func (c *Client) loginLocked(ctx context.Context) error {
	body := escapeParam("User", c.username) + escapeParam("Password", c.password)
	ret, err := c.callLocked(ctx, "ILogin", "Login", []byte(body), false)
	if err != nil {
		return err
	}
	ok, perr := strconv.ParseBool(strings.TrimSpace(ret.Text))
	if perr != nil {
		return verror.New(verror.KindDecode, "aci.Client.Login", perr)
	}
	if !ok {
		return verror.New(verror.KindAuth, "aci.Client.Login", ErrBadCredentials)
	}
	return nil
}

// GetVersion returns the controller's firmware components.
func (c *Client) GetVersion(ctx context.Context) (Version, error) {
	ret, err := c.call(ctx, "IIntrospection", "GetVersion", nil)
	if err != nil {
		return Version{}, err
	}
	var v Version
	if el, ok := ret.Child("Kernel"); ok {
		v.Kernel = el.Text
	}
	if el, ok := ret.Child("Rootfs"); ok {
		v.RootFS = el.Text
	}
	if el, ok := ret.Child("App"); ok {
		v.App = el.Text
	}
	return v, nil
}

// GetInterfaces lists the interfaces the controller implements.
func (c *Client) GetInterfaces(ctx context.Context) ([]string, error) {
	ret, err := c.call(ctx, "IIntrospection", "GetInterfaces", nil)
	if err != nil {
		return nil, err
	}
	return childTexts(ret), nil
}

// GetTypes lists the object types the controller knows about.
func (c *Client) GetTypes(ctx context.Context) ([]string, error) {
	ret, err := c.call(ctx, "IIntrospection", "GetTypes", nil)
	if err != nil {
		return nil, err
	}
	return childTexts(ret), nil
}

func childTexts(el *Element) []string {
	out := make([]string, 0, len(el.Children))
	for _, c := range el.Children {
		out = append(out, c.Text)
	}
	return out
}

// OpenFilter opens a paged object filter for the given kind names,
// optionally narrowed by an XPath expression, and returns an opaque
// handle for subsequent [*Client.GetFilterResults] / [*Client.CloseFilter]
// calls.
func (c *Client) OpenFilter(ctx context.Context, types []string, xpath string) (FilterHandle, error) {
	var body bytes.Buffer
	body.WriteString("<Objects>")
	for _, t := range types {
		body.WriteString(escapeParam("ObjectType", t))
	}
	body.WriteString("</Objects>")
	if xpath != "" {
		body.WriteString(escapeParam("XPath", xpath))
	}
	ret, err := c.call(ctx, "IConfiguration", "OpenFilter", body.Bytes())
	if err != nil {
		return "", err
	}
	return FilterHandle(strings.TrimSpace(ret.Text)), nil
}

// GetFilterResults drains up to count objects from an open filter. The
// returned slice may be shorter than count; an empty slice with a nil
// error signals exhaustion.
func (c *Client) GetFilterResults(ctx context.Context, h FilterHandle, count int, wholeObject bool) ([]RawObject, error) {
	body := escapeParam("Handle", string(h)) +
		escapeParam("Count", strconv.Itoa(count)) +
		escapeParam("WholeObject", strconv.FormatBool(wholeObject))
	ret, err := c.call(ctx, "IConfiguration", "GetFilterResults", []byte(body))
	if err != nil {
		return nil, err
	}
	return decodeObjects(ret), nil
}

// CloseFilter releases a filter handle server-side. Callers MUST call
// this on every path that stops draining a filter before exhaustion,
// including cancellation and error paths (spec.md §4.C).
func (c *Client) CloseFilter(ctx context.Context, h FilterHandle) error {
	_, err := c.call(ctx, "IConfiguration", "CloseFilter", []byte(escapeParam("Handle", string(h))))
	return err
}

// decodeObjects parses the <Object>...</Object> children of a
// GetFilterResults/GetObject return value into [RawObject] records.
func decodeObjects(ret *Element) []RawObject {
	out := make([]RawObject, 0, len(ret.Children))
	for _, obj := range ret.Children {
		if obj.XMLName.Local != "Object" {
			continue
		}
		ro := RawObject{Body: obj}
		if vidStr, ok := obj.Attr("VID"); ok {
			if vid, err := strconv.Atoi(vidStr); err == nil {
				ro.VID = vid
			}
		}
		if ot, ok := obj.Attr("type"); ok {
			ro.ObjectType = ot
		} else if el, ok := obj.Child("ObjectType"); ok {
			ro.ObjectType = el.Text
		}
		out = append(out, ro)
	}
	return out
}

// GetObject looks up objects by VID in the requested order. Missing VIDs
// yield a zero-value [RawObject] in-slot with VID set to -1 (the
// "not-found" sentinel; spec.md §4.C).
func (c *Client) GetObject(ctx context.Context, vids []int) ([]RawObject, error) {
	var body bytes.Buffer
	for _, vid := range vids {
		body.WriteString(escapeParam("VID", strconv.Itoa(vid)))
	}
	ret, err := c.call(ctx, "IConfiguration", "GetObject", body.Bytes())
	if err != nil {
		return nil, err
	}
	objs := decodeObjects(ret)
	byVID := make(map[int]RawObject, len(objs))
	for _, o := range objs {
		byVID[o.VID] = o
	}
	out := make([]RawObject, len(vids))
	for i, vid := range vids {
		if o, ok := byVID[vid]; ok {
			out[i] = o
		} else {
			out[i] = RawObject{VID: -1}
		}
	}
	return out, nil
}

// Enumerate returns a lazy, paged sequence of all objects matching types.
// It opens one filter, drains in pages of [DefaultPageSize], and closes
// the filter on exhaustion, on error, or when the caller stops ranging
// early (spec.md §4.C: "Cancellation MUST close the handle even on error
// paths").
func (c *Client) Enumerate(ctx context.Context, types []string) iter.Seq2[RawObject, error] {
	return func(yield func(RawObject, error) bool) {
		handle, err := c.OpenFilter(ctx, types, "")
		if err != nil {
			yield(RawObject{}, err)
			return
		}
		closed := false
		closeFilter := func() {
			if !closed {
				closed = true
				c.CloseFilter(ctx, handle)
			}
		}
		defer closeFilter()

		for {
			if err := ctx.Err(); err != nil {
				yield(RawObject{}, verror.New(verror.KindCancelled, "aci.Client.Enumerate", err))
				return
			}
			page, err := c.GetFilterResults(ctx, handle, DefaultPageSize, true)
			if err != nil {
				yield(RawObject{}, err)
				return
			}
			if len(page) == 0 {
				return
			}
			for _, obj := range page {
				if !yield(obj, nil) {
					return
				}
			}
			if len(page) < DefaultPageSize {
				return
			}
		}
	}
}
