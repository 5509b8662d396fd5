// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/ipv4"

	"github.com/go-vantage/vantage/vlog"
)

// mdnsAddr is the IPv4 mDNS multicast group and port (RFC 6762 §3).
const mdnsAddr = "224.0.0.251:5353"

// Config configures [BrowseWithConfig]. The zero value uses defaults.
type Config struct {
	// Logger receives Warn-level notices for malformed responses.
	// Defaults to [vlog.DefaultSLogger] (discard).
	Logger vlog.SLogger

	// Interface restricts the multicast join to one network interface.
	// nil lets the kernel pick.
	Interface *net.Interface
}

func (c *Config) logger() vlog.SLogger {
	if c == nil || c.Logger == nil {
		return vlog.DefaultSLogger()
	}
	return c.Logger
}

// Browse sends one multicast DNS-SD PTR query for serviceType (one of the
// Service* constants) and returns every distinct instance that responded
// within timeout, or ctx's deadline if sooner.
//
// Browse is a single best-effort probe, not a continuous watcher: it opens
// a socket, queries once, collects responses until the deadline, and
// returns. Callers wanting continuous discovery call it again.
func Browse(ctx context.Context, serviceType string, timeout time.Duration) ([]Record, error) {
	return BrowseWithConfig(ctx, serviceType, timeout, nil)
}

// BrowseWithConfig is [Browse] with explicit [Config].
func BrowseWithConfig(ctx context.Context, serviceType string, timeout time.Duration, cfg *Config) ([]Record, error) {
	logger := cfg.logger()

	group, err := net.ResolveUDPAddr("udp4", mdnsAddr)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve multicast group: %w", err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: group.Port})
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	pc := ipv4.NewPacketConn(conn)
	var iface *net.Interface
	if cfg != nil {
		iface = cfg.Interface
	}
	if err := pc.JoinGroup(iface, group); err != nil {
		logger.Warn("discoveryJoinGroupFailed", slog.String("error", err.Error()))
	}
	if err := pc.SetMulticastTTL(255); err != nil {
		logger.Warn("discoverySetTTLFailed", slog.String("error", err.Error()))
	}

	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(serviceType), dns.TypePTR)
	query.RecursionDesired = false

	packed, err := query.Pack()
	if err != nil {
		return nil, fmt.Errorf("discovery: pack query: %w", err)
	}
	if _, err := conn.WriteToUDP(packed, group); err != nil {
		return nil, fmt.Errorf("discovery: send query: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("discovery: set read deadline: %w", err)
	}

	seen := map[string]Record{}
	buf := make([]byte, 65535)
	for ctx.Err() == nil {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			break // read deadline reached, or socket closed
		}
		resp := new(dns.Msg)
		if err := resp.Unpack(buf[:n]); err != nil {
			logger.Warn("discoveryUnpackFailed", slog.String("error", err.Error()))
			continue
		}
		for _, rec := range decodeResponse(dns.Fqdn(serviceType), resp) {
			seen[rec.Instance] = rec
		}
	}

	out := make([]Record, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	return out, nil
}

// decodeResponse resolves the PTR/SRV/A/TXT records of one mDNS response
// against each other into zero or more [Record]s naming serviceType.
func decodeResponse(serviceType string, msg *dns.Msg) []Record {
	var instances []string
	srvByName := map[string]*dns.SRV{}
	addrByName := map[string]netip.Addr{}
	txtByName := map[string]map[string]string{}

	rrs := make([]dns.RR, 0, len(msg.Answer)+len(msg.Extra))
	rrs = append(rrs, msg.Answer...)
	rrs = append(rrs, msg.Extra...)

	for _, rr := range rrs {
		switch rec := rr.(type) {
		case *dns.PTR:
			if strings.EqualFold(rec.Hdr.Name, serviceType) {
				instances = append(instances, rec.Ptr)
			}
		case *dns.SRV:
			srvByName[strings.ToLower(rec.Hdr.Name)] = rec
		case *dns.A:
			if addr, ok := netip.AddrFromSlice(rec.A.To4()); ok {
				addrByName[strings.ToLower(rec.Hdr.Name)] = addr
			}
		case *dns.TXT:
			txtByName[strings.ToLower(rec.Hdr.Name)] = parseTXT(rec.Txt)
		}
	}

	out := make([]Record, 0, len(instances))
	for _, instance := range instances {
		rec := Record{Instance: instance, ServiceType: serviceType, TXT: txtByName[strings.ToLower(instance)]}
		if srv, ok := srvByName[strings.ToLower(instance)]; ok {
			rec.Host = srv.Target
			rec.Port = int(srv.Port)
			rec.Addr = addrByName[strings.ToLower(srv.Target)]
		}
		out = append(out, rec)
	}
	return out
}

func parseTXT(fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if i := strings.IndexByte(f, '='); i >= 0 {
			out[f[:i]] = f[i+1:]
		} else {
			out[f] = ""
		}
	}
	return out
}
