// SPDX-License-Identifier: GPL-3.0-or-later

package events

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-vantage/vantage/internal/hc"
	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// Categories is the closed set of category STATUS values (spec.md §4.F).
var Categories = []string{
	"LOAD", "LED", "BTN", "TASK", "TEMP", "THERMFAN", "THERMOP", "THERMDAY",
	"SLIDER", "TEXT", "VARIABLE", "BLIND", "WIND", "LIGHT", "CURRENT",
	"POWER", "ALL", "NONE",
}

// EllogTypes is the closed set of enhanced-log types (spec.md §4.F).
var EllogTypes = []string{
	"STATUS", "STATUSEX", "AUTOMATION", "SYSTEM", "EVENT", "MODCOM", "STATCOM",
}

func validOneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// invoker is the subset of [*hc.Client] the dispatcher needs; an
// interface so tests can substitute a fake command channel.
type invoker interface {
	RawCommand(ctx context.Context, verb string) (string, error)
}

var _ invoker = (*hc.Client)(nil)

// Dispatcher routes incoming status/enhanced-log lines to the
// subscriptions that asked for them, and issues the STATUS/ADDSTATUS/
// ELENABLE/ELLOG commands to install and renew subscriptions.
//
// Wire its [*Dispatcher.HandleStatusLine] and [*Dispatcher.HandleEllogLine]
// methods as the hc transport's OnStatus/OnEllog hooks, and call
// [*Dispatcher.Resync] from the transport's OnResync hook to reinstall
// every live subscription after a reconnect (spec.md §4.D, §4.F).
type Dispatcher struct {
	client invoker
	logger vlog.SLogger

	mu             sync.Mutex
	categorySubs   map[string][]*Subscription
	vidSubs        map[int][]*Subscription
	ellogSubs      map[string][]*Subscription
	all            []*Subscription
	statusexActive bool
}

// NewDispatcher returns a [*Dispatcher] issuing subscription commands on
// client.
func NewDispatcher(client invoker, logger vlog.SLogger) *Dispatcher {
	if logger == nil {
		logger = vlog.DefaultSLogger()
	}
	return &Dispatcher{
		client:       client,
		logger:       logger,
		categorySubs: map[string][]*Subscription{},
		vidSubs:      map[int][]*Subscription{},
		ellogSubs:    map[string][]*Subscription{},
	}
}

// SubscribeStatus installs a category STATUS subscription.
func (d *Dispatcher) SubscribeStatus(ctx context.Context, category string, bufSize int, cb func(Event)) (*Subscription, error) {
	if !validOneOf(category, Categories) {
		return nil, verror.New(verror.KindProtocol, "events.Dispatcher.SubscribeStatus", fmt.Errorf("events: invalid category %q", category))
	}
	if _, err := d.client.RawCommand(ctx, "STATUS "+category); err != nil {
		return nil, err
	}
	sub := newSubscription(vlog.NewSpanID(), KindStatus, bufSize, cb, d.logger, nil)
	sub.setState(StateActive)

	d.mu.Lock()
	d.categorySubs[category] = append(d.categorySubs[category], sub)
	d.all = append(d.all, sub)
	d.mu.Unlock()

	sub.unregister = func() { d.removeCategorySub(category, sub) }
	return sub, nil
}

// SubscribeObject installs a per-VID ADDSTATUS subscription.
func (d *Dispatcher) SubscribeObject(ctx context.Context, vids []int, bufSize int, cb func(Event)) (*Subscription, error) {
	if len(vids) == 0 {
		return nil, verror.New(verror.KindProtocol, "events.Dispatcher.SubscribeObject", fmt.Errorf("events: no VIDs given"))
	}
	var b strings.Builder
	b.WriteString("ADDSTATUS")
	for _, vid := range vids {
		fmt.Fprintf(&b, " %d", vid)
	}
	if _, err := d.client.RawCommand(ctx, b.String()); err != nil {
		return nil, err
	}
	sub := newSubscription(vlog.NewSpanID(), KindAddStatus, bufSize, cb, d.logger, nil)
	sub.setState(StateActive)

	d.mu.Lock()
	for _, vid := range vids {
		d.vidSubs[vid] = append(d.vidSubs[vid], sub)
	}
	d.all = append(d.all, sub)
	d.mu.Unlock()

	sub.unregister = func() { d.removeVIDSub(vids, sub) }
	return sub, nil
}

// SubscribeEllog enables and installs an enhanced-log subscription.
// logType == "STATUSEX" implicitly covers all object interface results
// without per-VID ADDSTATUS enrolment (spec.md §4.F), and is the
// preferred path when the controller supports it.
func (d *Dispatcher) SubscribeEllog(ctx context.Context, logType string, bufSize int, cb func(Event)) (*Subscription, error) {
	if !validOneOf(logType, EllogTypes) {
		return nil, verror.New(verror.KindProtocol, "events.Dispatcher.SubscribeEllog", fmt.Errorf("events: invalid ellog type %q", logType))
	}
	if _, err := d.client.RawCommand(ctx, "ELENABLE "+logType+" ON"); err != nil {
		return nil, err
	}
	if _, err := d.client.RawCommand(ctx, "ELLOG "+logType+" ON"); err != nil {
		return nil, err
	}
	sub := newSubscription(vlog.NewSpanID(), KindEllog, bufSize, cb, d.logger, nil)
	sub.setState(StateActive)

	d.mu.Lock()
	d.ellogSubs[logType] = append(d.ellogSubs[logType], sub)
	d.all = append(d.all, sub)
	if logType == "STATUSEX" {
		d.statusexActive = true
	}
	d.mu.Unlock()

	sub.unregister = func() { d.removeEllogSub(logType, sub) }
	return sub, nil
}

func (d *Dispatcher) removeCategorySub(category string, sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.categorySubs[category] = removeSub(d.categorySubs[category], sub)
	d.all = removeSub(d.all, sub)
}

func (d *Dispatcher) removeVIDSub(vids []int, sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, vid := range vids {
		d.vidSubs[vid] = removeSub(d.vidSubs[vid], sub)
	}
	d.all = removeSub(d.all, sub)
}

func (d *Dispatcher) removeEllogSub(logType string, sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ellogSubs[logType] = removeSub(d.ellogSubs[logType], sub)
	d.all = removeSub(d.all, sub)
}

func removeSub(subs []*Subscription, target *Subscription) []*Subscription {
	out := subs[:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// HandleStatusLine parses and routes a single S:-prefixed line (prefix
// already stripped). Category lines have the shape "<CAT> <vid>
// <args...>"; ADDSTATUS lines are spelled "STATUS <vid>
// <Interface.Method> <result...>" on the wire (spec.md §4.F).
func (d *Dispatcher) HandleStatusLine(line string) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return
	}
	if fields[0] == "STATUS" && len(fields) >= 3 && strings.Contains(fields[2], ".") {
		d.handleAddStatus(fields)
		return
	}
	d.handleCategoryStatus(fields)
}

func (d *Dispatcher) handleCategoryStatus(fields []string) {
	category := fields[0]
	vid, _ := strconv.Atoi(fields[1])
	event := Event{Kind: KindStatus, Category: category, VID: vid, Args: fields[2:]}

	d.mu.Lock()
	subs := append([]*Subscription{}, d.categorySubs[category]...)
	subs = append(subs, d.categorySubs["ALL"]...)
	d.mu.Unlock()

	for _, s := range subs {
		s.deliver(event)
	}
}

func (d *Dispatcher) handleAddStatus(fields []string) {
	vid, _ := strconv.Atoi(fields[1])
	event := Event{Kind: KindAddStatus, VID: vid, InterfaceMethod: fields[2], Args: fields[3:]}

	d.mu.Lock()
	subs := append([]*Subscription{}, d.vidSubs[vid]...)
	statusex := d.statusexActive
	var statusexSubs []*Subscription
	if statusex {
		statusexSubs = append(statusexSubs, d.ellogSubs["STATUSEX"]...)
	}
	d.mu.Unlock()

	for _, s := range subs {
		s.deliver(event)
	}
	for _, s := range statusexSubs {
		s.deliver(event)
	}
}

// HandleEllogLine parses and routes a single EL:-prefixed line (prefix
// already stripped): "<type> <payload...>".
func (d *Dispatcher) HandleEllogLine(line string) {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return
	}
	logType := fields[0]
	event := Event{Kind: KindEllog, LogType: logType, Args: fields[1:]}

	d.mu.Lock()
	subs := append([]*Subscription{}, d.ellogSubs[logType]...)
	d.mu.Unlock()

	for _, s := range subs {
		s.deliver(event)
	}
}

// Suspend transitions every live subscription to suspended. Called when
// the underlying transport disconnects (spec.md §4.F).
func (d *Dispatcher) Suspend() {
	d.mu.Lock()
	subs := append([]*Subscription{}, d.all...)
	d.mu.Unlock()
	for _, s := range subs {
		if s.State() == StateActive {
			s.setState(StateSuspended)
		}
	}
}

// Resync re-installs every live subscription after a reconnect+login,
// transitioning suspended subscriptions back to active. Call this from
// the transport's resync hook, exactly once, before admitting new
// requests (spec.md §4.D).
func (d *Dispatcher) Resync(ctx context.Context) {
	d.mu.Lock()
	categories := make([]string, 0, len(d.categorySubs))
	for cat, subs := range d.categorySubs {
		if len(subs) > 0 {
			categories = append(categories, cat)
		}
	}
	vids := make([]int, 0, len(d.vidSubs))
	for vid, subs := range d.vidSubs {
		if len(subs) > 0 {
			vids = append(vids, vid)
		}
	}
	ellogTypes := make([]string, 0, len(d.ellogSubs))
	for t, subs := range d.ellogSubs {
		if len(subs) > 0 {
			ellogTypes = append(ellogTypes, t)
		}
	}
	d.mu.Unlock()

	for _, cat := range categories {
		d.client.RawCommand(ctx, "STATUS "+cat)
	}
	if len(vids) > 0 {
		var b strings.Builder
		b.WriteString("ADDSTATUS")
		for _, vid := range vids {
			fmt.Fprintf(&b, " %d", vid)
		}
		d.client.RawCommand(ctx, b.String())
	}
	for _, t := range ellogTypes {
		d.client.RawCommand(ctx, "ELENABLE "+t+" ON")
		d.client.RawCommand(ctx, "ELLOG "+t+" ON")
	}

	d.mu.Lock()
	subs := append([]*Subscription{}, d.all...)
	d.mu.Unlock()
	for _, s := range subs {
		if s.State() == StateSuspended {
			s.setState(StateActive)
		}
	}
}
