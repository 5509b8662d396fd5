// SPDX-License-Identifier: GPL-3.0-or-later

package controllers

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/go-vantage/vantage/internal/aci"
	"github.com/go-vantage/vantage/internal/events"
	"github.com/go-vantage/vantage/internal/hc"
	"github.com/go-vantage/vantage/objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestACIClient(t *testing.T, sim *aciSimulator) *aci.Client {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	go sim.serve(serverConn)
	t.Cleanup(func() { clientConn.Close() })
	return aci.NewClient(clientConn, nil, nil, nil)
}

// Initialize with fetchState=false enumerates configuration and makes
// objects queryable via Get/GetByName/All/Filter, without touching the
// command channel.
func TestControllerInitializeAndQuery(t *testing.T) {
	sim := newACISimulator()
	sim.seedLoads(3)
	aciClient := newTestACIClient(t, sim)

	c := New[*objects.Load](Deps{ACI: aciClient}, objects.WireTypesFor(objects.KindLoad), nil)

	require.NoError(t, c.Initialize(context.Background(), false))

	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	v, ok, err := c.Get(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Load0", v.Name)

	byName, ok, err := c.GetByName(context.Background(), "Load1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 101, byName.VID)

	filtered, err := c.Filter(context.Background(), func(l *objects.Load) bool { return l.VID == 102 })
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Load2", filtered[0].Name)
}

// Lazy enumeration: querying before an explicit Initialize call
// transparently triggers one.
func TestControllerLazyEnumeration(t *testing.T) {
	sim := newACISimulator()
	sim.seedLoads(2)
	aciClient := newTestACIClient(t, sim)

	c := New[*objects.Load](Deps{ACI: aciClient}, objects.WireTypesFor(objects.KindLoad), nil)

	all, err := c.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// Subscribers are notified on initialize and again when a state refresh
// updates an object (spec.md §8 scenario 2's controller-level half).
func TestControllerRefreshNotifiesSubscribers(t *testing.T) {
	sim := newACISimulator()
	sim.seedLoads(1)
	aciClient := newTestACIClient(t, sim)

	hcSim, err := newHCSimulator()
	require.NoError(t, err)
	defer hcSim.close()

	hcClient := hc.NewClient(hc.ClientConfig{
		Dial: func(ctx context.Context) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "tcp", hcSim.addr())
		},
		Login: func(ctx context.Context, conn net.Conn) error {
			return hc.PerformLogin(ctx, conn, "u", "p")
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hcClient.Run(ctx)
	require.NoError(t, hcClient.WaitReady(ctx))

	dispatcher := events.NewDispatcher(hcClient, nil)

	c := New[*objects.Load](Deps{ACI: aciClient, HC: hcClient, Events: dispatcher}, objects.WireTypesFor(objects.KindLoad), RefreshLoad)

	var mu sync.Mutex
	var changes []objects.ChangeKind
	c.Subscribe(func(kind objects.ChangeKind, v *objects.Load) {
		mu.Lock()
		changes = append(changes, kind)
		mu.Unlock()
	})

	require.NoError(t, c.Initialize(context.Background(), true))

	v, ok, err := c.Get(context.Background(), 100)
	require.NoError(t, err)
	require.True(t, ok)

	level, known := v.Level()
	require.True(t, known)
	assert.Equal(t, 42.0, level)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, changes, objects.ChangeInitialized)
	assert.Contains(t, changes, objects.ChangeUpdated)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}
