// SPDX-License-Identifier: GPL-3.0-or-later

package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvoker records every command it is asked to send and always
// succeeds, letting tests assert on the wire protocol without a real
// Host Command socket.
type fakeInvoker struct {
	mu       sync.Mutex
	commands []string
}

func (f *fakeInvoker) RawCommand(ctx context.Context, verb string) (string, error) {
	f.mu.Lock()
	f.commands = append(f.commands, verb)
	f.mu.Unlock()
	return "OK", nil
}

func (f *fakeInvoker) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.commands...)
}

func waitForEvents(t *testing.T, got *[]Event, mu *sync.Mutex, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := len(*got) >= n
		mu.Unlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events", n)
}

// Set and observe: a category subscription receives a status line the
// dispatcher routes to it (spec.md §8 scenario 2).
func TestDispatcherSubscribeStatusRoundTrip(t *testing.T) {
	inv := &fakeInvoker{}
	d := NewDispatcher(inv, nil)

	var mu sync.Mutex
	var got []Event
	sub, err := d.SubscribeStatus(context.Background(), "LOAD", 0, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Equal(t, []string{"STATUS LOAD"}, inv.sent())

	d.HandleStatusLine("LOAD 118 75.000")
	waitForEvents(t, &got, &mu, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, KindStatus, got[0].Kind)
	assert.Equal(t, "LOAD", got[0].Category)
	assert.Equal(t, 118, got[0].VID)
	assert.Equal(t, []string{"75.000"}, got[0].Args)
}

func TestDispatcherSubscribeStatusRejectsUnknownCategory(t *testing.T) {
	d := NewDispatcher(&fakeInvoker{}, nil)
	_, err := d.SubscribeStatus(context.Background(), "BOGUS", 0, func(Event) {})
	assert.Error(t, err)
}

func TestDispatcherSubscribeObjectRoundTrip(t *testing.T) {
	inv := &fakeInvoker{}
	d := NewDispatcher(inv, nil)

	var mu sync.Mutex
	var got []Event
	sub, err := d.SubscribeObject(context.Background(), []int{118, 119}, 0, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Len(t, inv.sent(), 1)
	assert.Contains(t, inv.sent()[0], "ADDSTATUS")

	d.HandleStatusLine("STATUS 118 Load.GetLevel 75.000")
	waitForEvents(t, &got, &mu, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, KindAddStatus, got[0].Kind)
	assert.Equal(t, 118, got[0].VID)
	assert.Equal(t, "Load.GetLevel", got[0].InterfaceMethod)
}

func TestDispatcherSubscribeEllogRoundTrip(t *testing.T) {
	inv := &fakeInvoker{}
	d := NewDispatcher(inv, nil)

	var mu sync.Mutex
	var got []Event
	sub, err := d.SubscribeEllog(context.Background(), "SYSTEM", 0, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	assert.Equal(t, []string{"ELENABLE SYSTEM ON", "ELLOG SYSTEM ON"}, inv.sent())

	d.HandleEllogLine("SYSTEM something happened")
	waitForEvents(t, &got, &mu, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, KindEllog, got[0].Kind)
	assert.Equal(t, "SYSTEM", got[0].LogType)
}

// Unsubscribing stops further delivery.
func TestDispatcherUnsubscribeStopsDelivery(t *testing.T) {
	d := NewDispatcher(&fakeInvoker{}, nil)

	var mu sync.Mutex
	var got []Event
	sub, err := d.SubscribeStatus(context.Background(), "LOAD", 0, func(e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	require.NoError(t, err)

	sub.Unsubscribe()
	assert.Equal(t, StateRemoved, sub.State())

	d.HandleStatusLine("LOAD 118 75.000")
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, got)
}

// Reconnect resubscribes: Suspend then Resync transitions subscriptions
// through suspended back to active and reissues every wire command
// (spec.md §8 scenario 3).
func TestDispatcherResyncReinstallsSubscriptions(t *testing.T) {
	inv := &fakeInvoker{}
	d := NewDispatcher(inv, nil)

	sub, err := d.SubscribeStatus(context.Background(), "LOAD", 0, func(Event) {})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	d.Suspend()
	assert.Equal(t, StateSuspended, sub.State())

	d.Resync(context.Background())
	assert.Equal(t, StateActive, sub.State())

	sent := inv.sent()
	assert.Equal(t, []string{"STATUS LOAD", "STATUS LOAD"}, sent)
}
