// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponseResolvesPTRSRVAndTXT(t *testing.T) {
	const instance = "Controller-0012AB._hc._tcp.local."

	msg := new(dns.Msg)
	msg.Answer = []dns.RR{
		&dns.PTR{Hdr: dns.RR_Header{Name: ServiceHC, Rrtype: dns.TypePTR}, Ptr: instance},
	}
	msg.Extra = []dns.RR{
		&dns.SRV{Hdr: dns.RR_Header{Name: instance, Rrtype: dns.TypeSRV}, Target: "controller.local.", Port: 3010},
		&dns.A{Hdr: dns.RR_Header{Name: "controller.local.", Rrtype: dns.TypeA}, A: net.IPv4(192, 168, 1, 50)},
		&dns.TXT{Hdr: dns.RR_Header{Name: instance, Rrtype: dns.TypeTXT}, Txt: []string{"model=II-Omni", "secure"}},
	}

	recs := decodeResponse(ServiceHC, msg)

	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, instance, rec.Instance)
	assert.Equal(t, ServiceHC, rec.ServiceType)
	assert.Equal(t, "controller.local.", rec.Host)
	assert.Equal(t, 3010, rec.Port)
	assert.Equal(t, "192.168.1.50", rec.Addr.String())
	assert.Equal(t, "II-Omni", rec.TXT["model"])
	assert.Equal(t, "", rec.TXT["secure"])
}

func TestDecodeResponseIgnoresOtherServiceTypes(t *testing.T) {
	msg := new(dns.Msg)
	msg.Answer = []dns.RR{
		&dns.PTR{Hdr: dns.RR_Header{Name: ServiceACI, Rrtype: dns.TypePTR}, Ptr: "Other._aci._tcp.local."},
	}

	recs := decodeResponse(ServiceHC, msg)
	assert.Empty(t, recs)
}

func TestDecodeResponseWithoutSRVOrTXT(t *testing.T) {
	const instance = "Bare._hc._tcp.local."
	msg := new(dns.Msg)
	msg.Answer = []dns.RR{
		&dns.PTR{Hdr: dns.RR_Header{Name: ServiceHC, Rrtype: dns.TypePTR}, Ptr: instance},
	}

	recs := decodeResponse(ServiceHC, msg)
	require.Len(t, recs, 1)
	assert.Equal(t, instance, recs[0].Instance)
	assert.Equal(t, "", recs[0].Host)
	assert.Nil(t, recs[0].TXT)
}

func TestParseTXTHandlesBareTokens(t *testing.T) {
	got := parseTXT([]string{"a=1", "b=2", "flag"})
	assert.Equal(t, map[string]string{"a": "1", "b": "2", "flag": ""}, got)
}
