// SPDX-License-Identifier: GPL-3.0-or-later

package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-vantage/vantage/internal/aci"
	"github.com/go-vantage/vantage/internal/events"
	"github.com/go-vantage/vantage/internal/hc"
	"github.com/go-vantage/vantage/objects"
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
	"golang.org/x/sync/errgroup"
)

// DefaultFanOutLimit bounds the number of concurrent state-refresh
// round trips a controller issues during Initialize/Resync (spec.md
// §4.H).
const DefaultFanOutLimit = 20

// RefreshFunc fetches one object's state fields over the command
// channel and applies them to v. Implemented per kind in refresh.go.
type RefreshFunc func(ctx context.Context, client *hc.Client, v objects.Variant) error

// Deps bundles the channel clients a [Controller] needs. ACI is required
// for enumeration; HC and Events are optional (a controller built
// without them can still serve Get/Filter over a one-shot config
// enumeration, but never receives state updates).
type Deps struct {
	ACI         *aci.Client
	HC          *hc.Client
	Events      *events.Dispatcher
	Logger      vlog.SLogger
	FanOutLimit int
}

func (d *Deps) setDefaults() {
	if d.Logger == nil {
		d.Logger = vlog.DefaultSLogger()
	}
	if d.FanOutLimit <= 0 {
		d.FanOutLimit = DefaultFanOutLimit
	}
}

// Controller owns every live object of one kind family (spec.md §4.H):
// lazy, cached enumeration; in-memory Get/Filter queries; change
// subscriptions; and resync-driven state refresh after a reconnect.
//
// T is the concrete variant type this controller owns (e.g. *objects.Load).
// Construct with [New].
type Controller[T objects.Variant] struct {
	deps      Deps
	wireTypes []string
	refresh   RefreshFunc

	mu          sync.RWMutex
	initialized bool
	order       []int
	byVID       map[int]T
	byName      map[string]int

	objSub *events.Subscription

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(objects.ChangeKind, T)
}

// New returns a [*Controller] for the given wire type names, using
// refresh (which may be nil for kinds with no synchronous state fetch,
// e.g. Task) to populate state during Initialize/Resync.
func New[T objects.Variant](deps Deps, wireTypes []string, refresh RefreshFunc) *Controller[T] {
	deps.setDefaults()
	return &Controller[T]{
		deps:      deps,
		wireTypes: wireTypes,
		refresh:   refresh,
		byVID:     map[int]T{},
		byName:    map[string]int{},
		subs:      map[int]func(objects.ChangeKind, T){},
	}
}

// Initialize enumerates every object of the owned types via the config
// channel, installs (or renews) an ADDSTATUS subscription for their
// VIDs, and, if fetchState, fetches every state field once with a
// bounded fan-out (spec.md §4.H). Idempotent: calling it again performs
// a full resync, re-enumerating configuration from scratch.
func (c *Controller[T]) Initialize(ctx context.Context, fetchState bool) error {
	if c.deps.ACI == nil {
		return verror.New(verror.KindProtocol, "controllers.Controller.Initialize", fmt.Errorf("controllers: no ACI client configured"))
	}

	var order []int
	byVID := map[int]T{}
	byName := map[string]int{}

	for raw, err := range c.deps.ACI.Enumerate(ctx, c.wireTypes) {
		if err != nil {
			return err
		}
		v, derr := objects.Decode(raw)
		if derr != nil {
			c.deps.Logger.Warn("controllersDecodeFailed", slog.String("error", derr.Error()))
			continue
		}
		t, ok := v.(T)
		if !ok {
			continue
		}
		order = append(order, raw.VID)
		byVID[raw.VID] = t
		if name := t.Base().Name; name != "" {
			byName[name] = raw.VID
		}
	}

	c.mu.Lock()
	c.order = order
	c.byVID = byVID
	c.byName = byName
	c.initialized = true
	c.mu.Unlock()

	c.notifyAll(objects.ChangeInitialized)

	if c.deps.Events != nil && len(order) > 0 {
		if c.objSub != nil {
			c.objSub.Unsubscribe()
		}
		sub, err := c.deps.Events.SubscribeObject(ctx, order, 0, c.handleEvent)
		if err != nil {
			return err
		}
		c.objSub = sub
	}

	if fetchState && c.refresh != nil && c.deps.HC != nil {
		return c.refreshAll(ctx)
	}
	return nil
}

// Resync re-runs the state-refresh phase without re-enumerating
// configuration (spec.md §4.H "On reconnect"). Wire this as (part of)
// the Session's resync hook for every controller.
func (c *Controller[T]) Resync(ctx context.Context) error {
	if c.refresh == nil || c.deps.HC == nil {
		return nil
	}
	return c.refreshAll(ctx)
}

func (c *Controller[T]) refreshAll(ctx context.Context) error {
	c.mu.RLock()
	values := make([]T, len(c.order))
	for i, vid := range c.order {
		values[i] = c.byVID[vid]
	}
	c.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.deps.FanOutLimit)
	for _, v := range values {
		v := v
		g.Go(func() error {
			if err := c.refresh(gctx, c.deps.HC, v); err != nil {
				c.deps.Logger.Warn("controllersRefreshFailed",
					slog.Int("vid", v.Base().VID), slog.String("error", err.Error()))
				return nil
			}
			c.notifyOne(objects.ChangeUpdated, v)
			return nil
		})
	}
	return g.Wait()
}

// handleEvent applies an ADDSTATUS event to its object and notifies
// subscribers. Unknown VIDs (an object observed via event before config
// enumeration, spec.md §3) are logged and ignored: lazily fetching
// attributes for them is a controllers-level enhancement the current
// implementation does not perform, since no attribute fetch is needed to
// keep existing subscribers correct.
func (c *Controller[T]) handleEvent(e events.Event) {
	c.mu.RLock()
	v, ok := c.byVID[e.VID]
	c.mu.RUnlock()
	if !ok {
		c.deps.Logger.Warn("controllersEventForUnknownVID", slog.Int("vid", e.VID))
		return
	}
	objects.ApplyState(v, e.InterfaceMethod, e.Args, c.deps.Logger)
	c.notifyOne(objects.ChangeUpdated, v)
}

// ensureInitialized triggers a one-shot, cached Initialize the first
// time a query is made before the caller has explicitly initialized
// (spec.md §4.H "lazy enumeration").
func (c *Controller[T]) ensureInitialized(ctx context.Context) error {
	c.mu.RLock()
	done := c.initialized
	c.mu.RUnlock()
	if done {
		return nil
	}
	return c.Initialize(ctx, true)
}

// Get returns the object with the given VID.
func (c *Controller[T]) Get(ctx context.Context, vid int) (T, bool, error) {
	var zero T
	if err := c.ensureInitialized(ctx); err != nil {
		return zero, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byVID[vid]
	return v, ok, nil
}

// GetByName returns the object with the given configured name.
func (c *Controller[T]) GetByName(ctx context.Context, name string) (T, bool, error) {
	var zero T
	if err := c.ensureInitialized(ctx); err != nil {
		return zero, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	vid, ok := c.byName[name]
	if !ok {
		return zero, false, nil
	}
	v := c.byVID[vid]
	return v, true, nil
}

// All returns every known object, in enumeration order. Triggers
// Initialize if this is the first query.
func (c *Controller[T]) All(ctx context.Context) ([]T, error) {
	if err := c.ensureInitialized(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, vid := range c.order {
		out = append(out, c.byVID[vid])
	}
	return out, nil
}

// Filter returns every known object for which pred returns true, in
// enumeration order.
func (c *Controller[T]) Filter(ctx context.Context, pred func(T) bool) ([]T, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(all))
	for _, v := range all {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Subscribe registers cb to be called for objects this controller owns:
// with [objects.ChangeInitialized] for every object when Initialize
// completes, and with [objects.ChangeUpdated] when an object's state is
// refreshed or changed by an event. [objects.ChangeAdded] and
// [objects.ChangeRemoved] are never sent. The returned func unregisters it.
func (c *Controller[T]) Subscribe(cb func(objects.ChangeKind, T)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = cb
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller[T]) notifyOne(kind objects.ChangeKind, v T) {
	c.subMu.Lock()
	cbs := make([]func(objects.ChangeKind, T), 0, len(c.subs))
	for _, cb := range c.subs {
		cbs = append(cbs, cb)
	}
	c.subMu.Unlock()
	for _, cb := range cbs {
		cb(kind, v)
	}
}

func (c *Controller[T]) notifyAll(kind objects.ChangeKind) {
	c.mu.RLock()
	values := make([]T, len(c.order))
	for i, vid := range c.order {
		values[i] = c.byVID[vid]
	}
	c.mu.RUnlock()
	for _, v := range values {
		c.notifyOne(kind, v)
	}
}
