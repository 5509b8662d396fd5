// SPDX-License-Identifier: GPL-3.0-or-later

package events

import (
	"log/slog"
	"sync"

	"github.com/go-vantage/vantage/vlog"
)

// Kind identifies the subscription mechanism (spec.md §4.F).
type Kind string

const (
	// KindStatus is a category STATUS subscription (coarse, schema-lite).
	KindStatus Kind = "status"

	// KindAddStatus is a per-object ADDSTATUS subscription (fine-grained,
	// carries the interface method name).
	KindAddStatus Kind = "addstatus"

	// KindEllog is an enhanced-log ELLOG subscription.
	KindEllog Kind = "ellog"
)

// State is a subscription's position in its lifecycle state machine
// (spec.md §4.F): pending -> active -> suspended -> active -> removed.
type State string

const (
	StatePending   State = "pending"
	StateActive    State = "active"
	StateSuspended State = "suspended"
	StateRemoved   State = "removed"
)

// Event is one dispatched status/ellog occurrence delivered to a
// subscription's callback.
type Event struct {
	// Kind is the subscription mechanism this event arrived through.
	Kind Kind

	// Category is the STATUS category for KindStatus events (e.g. "LOAD").
	Category string

	// VID is the object VID, when known (KindAddStatus, and KindStatus
	// events that carry one).
	VID int

	// InterfaceMethod is "Interface.Method" for KindAddStatus events.
	InterfaceMethod string

	// LogType is the ELLOG type for KindEllog events.
	LogType string

	// Args holds the remaining whitespace-separated tokens of the line.
	Args []string
}

// defaultBufferSize is the per-subscription ring buffer capacity used
// when a caller does not specify one.
const defaultBufferSize = 256

// Subscription owns one callback registration: a bounded ring buffer fed
// by the dispatcher's single reader goroutine, drained by a dedicated
// worker goroutine that invokes the callback. This decouples a slow
// callback from the socket reader (spec.md §4.F).
//
// Construct via [*Dispatcher]'s Subscribe* methods. Not intended for
// direct construction.
type Subscription struct {
	id   string
	kind Kind

	mu      sync.Mutex
	cond    *sync.Cond
	buf     []Event
	cap     int
	closed  bool
	state   State
	dropped int

	cb     func(Event)
	logger vlog.SLogger

	unregister func()
}

func newSubscription(id string, kind Kind, cap int, cb func(Event), logger vlog.SLogger, unregister func()) *Subscription {
	if cap <= 0 {
		cap = defaultBufferSize
	}
	if logger == nil {
		logger = vlog.DefaultSLogger()
	}
	s := &Subscription{
		id:         id,
		kind:       kind,
		cap:        cap,
		state:      StatePending,
		cb:         cb,
		logger:     logger,
		unregister: unregister,
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// ID returns the subscription's correlation identifier.
func (s *Subscription) ID() string { return s.id }

// Kind returns the subscription mechanism.
func (s *Subscription) Kind() Kind { return s.kind }

// State returns the subscription's current lifecycle state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Subscription) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// deliver pushes e into the ring buffer, dropping the oldest buffered
// event if the subscription is at capacity (logged as a warning).
func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return
	}
	if len(s.buf) >= s.cap {
		s.buf = s.buf[1:]
		s.dropped++
		s.logger.Warn("eventDropped", slog.String("subscriptionID", s.id), slog.Int("totalDropped", s.dropped))
	}
	s.buf = append(s.buf, e)
	s.cond.Signal()
}

// run is the subscription's dedicated consumer goroutine: pop, invoke
// callback, repeat, until Unsubscribe closes the buffer.
func (s *Subscription) run() {
	for {
		s.mu.Lock()
		for len(s.buf) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed && len(s.buf) == 0 {
			s.mu.Unlock()
			return
		}
		e := s.buf[0]
		s.buf = s.buf[1:]
		s.mu.Unlock()

		s.cb(e)
	}
}

// Unsubscribe removes the callback registration. Safe to call more than
// once; calls after the first are no-ops.
func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateRemoved
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.unregister != nil {
		s.unregister()
	}
}
