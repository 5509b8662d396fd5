// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/go-vantage/vantage/vlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dial connects over plain TCP when cfg.TLS is false.
func TestDialPlainTCP(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			assert.Equal(t, "127.0.0.1:3001", address)
			conn := newMinimalConn()
			conn.CloseFunc = func() error { return nil }
			return conn, nil
		},
	}

	conn, err := Dial(context.Background(), DialConfig{
		Host:      "127.0.0.1",
		TLSPort:   3010,
		PlainPort: 3001,
		TLS:       false,
	}, cfg, vlog.DefaultSLogger())

	require.NoError(t, err)
	require.NotNil(t, conn)
	conn.Close()
}

// Dial fails when the host cannot be resolved.
func TestDialResolveFailure(t *testing.T) {
	cfg := NewConfig()

	_, err := Dial(context.Background(), DialConfig{
		Host:      "no-such-host.invalid",
		PlainPort: 3001,
	}, cfg, vlog.DefaultSLogger())

	require.Error(t, err)
}

// Dial surfaces dial errors from the underlying dialer.
func TestDialConnectFailure(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := Dial(context.Background(), DialConfig{
		Host:      "127.0.0.1",
		PlainPort: 3001,
	}, cfg, vlog.DefaultSLogger())

	require.Error(t, err)
}

// Dial respects cfg.Timeout by bounding the dial via context.
func TestDialTimeout(t *testing.T) {
	cfg := NewConfig()
	cfg.Dialer = &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := Dial(context.Background(), DialConfig{
		Host:      "127.0.0.1",
		PlainPort: 3001,
		Timeout:   10 * time.Millisecond,
	}, cfg, vlog.DefaultSLogger())

	require.Error(t, err)
}

// resolveAddrPort accepts a literal IP without doing a lookup.
func TestResolveAddrPortLiteral(t *testing.T) {
	addr, err := resolveAddrPort(context.Background(), "192.0.2.1", 3010)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1:3010", addr.String())
}
