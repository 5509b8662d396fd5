// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/go-vantage/vantage/verror"
	"github.com/go-vantage/vantage/vlog"
)

// DialConfig configures [Dial] for one of the two Vantage channels (ACI
// config or Host Command).
//
// spec.md §6: TCP+TLS to {host}:2010 (config) / {host}:3010 (command), with
// plain-TCP fallback ports 2001/3001 if TLS is disabled.
type DialConfig struct {
	// Host is the controller's hostname or IP address.
	Host string

	// TLSPort is the port to use when TLS is enabled.
	TLSPort int

	// PlainPort is the port to use when TLS is disabled.
	PlainPort int

	// TLS enables the TLS-secured variant of the service.
	TLS bool

	// Verify controls peer-certificate verification when TLS is enabled.
	Verify VerifyMode

	// Timeout bounds the dial+handshake. Zero means no library-imposed
	// timeout beyond whatever the caller's context carries.
	Timeout time.Duration
}

// Dial establishes a connection to one of cfg.Host's two Vantage channels:
// resolve, connect, bind context cancellation to connection close,
// optionally negotiate TLS under cfg.Verify, then wrap for I/O logging.
//
// The returned [net.Conn] is already wrapped for context-triggered close
// ([CancelWatchFunc]) and I/O observability ([ObserveConnFunc]); callers
// must still call Close() when done.
func Dial(ctx context.Context, cfg DialConfig, nopCfg *Config, logger vlog.SLogger) (net.Conn, error) {
	// The cancel watcher is bound to the caller's context: the
	// Timeout-bounded context below is cancelled as soon as Dial returns.
	watchCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	port := cfg.PlainPort
	if cfg.TLS {
		port = cfg.TLSPort
	}
	addr, err := resolveAddrPort(ctx, cfg.Host, port)
	if err != nil {
		return nil, verror.New(verror.KindConnect, "transport.Dial", err)
	}

	connectFn := NewConnectFunc(nopCfg, "tcp", logger)
	conn, err := connectFn.Call(ctx, addr)
	if err != nil {
		return nil, verror.New(verror.KindConnect, "transport.Dial", err)
	}

	cancelWatchFn := NewCancelWatchFunc()
	conn, _ = cancelWatchFn.Call(watchCtx, conn)

	if cfg.TLS {
		tlsConfig := TLSConfig(cfg.Verify, cfg.Host)
		handshakeFn := NewTLSHandshakeFunc(nopCfg, tlsConfig, logger)
		tconn, err := handshakeFn.Call(ctx, conn)
		if err != nil {
			return nil, verror.New(verror.KindConnect, "transport.Dial", err)
		}
		conn = tconn
	}

	observeFn := NewObserveConnFunc(nopCfg, logger)
	conn, _ = observeFn.Call(ctx, conn)

	return conn, nil
}

// resolveAddrPort resolves host to an IP and pairs it with port. Hosts that
// are already literal IP addresses are used as-is.
func resolveAddrPort(ctx context.Context, host string, port int) (netip.AddrPort, error) {
	if ip, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(ip, uint16(port)), nil
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("transport: no addresses found for %q", host)
	}
	addr, ok := netip.AddrFromSlice(ips[0])
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("transport: invalid address for %q", host)
	}
	return netip.AddrPortFrom(addr.Unmap(), uint16(port)), nil
}
