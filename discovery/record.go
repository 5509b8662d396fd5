// SPDX-License-Identifier: GPL-3.0-or-later

package discovery

import "net/netip"

// The four mDNS service types a controller advertises (spec.md §6).
const (
	ServiceACI       = "_aci._tcp.local."
	ServiceSecureACI = "_secure_aci._tcp.local."
	ServiceHC        = "_hc._tcp.local."
	ServiceSecureHC  = "_secure_hc._tcp.local."
)

// Record is one controller advertisement seen in response to a [Browse]
// query: a DNS-SD PTR record resolved, where possible, against its SRV
// (host/port) and TXT (key/value) records.
type Record struct {
	// Instance is the PTR record's target: the service instance name,
	// e.g. "Controller-0012AB._hc._tcp.local.".
	Instance string

	// ServiceType is the service type queried for, e.g. "_hc._tcp.local.".
	ServiceType string

	// Host is the SRV record's target hostname, if one was present in
	// the response.
	Host string

	// Addr is the IPv4 address resolved for Host from an accompanying A
	// record, if present. Zero value if the response carried no A
	// record for Host.
	Addr netip.Addr

	// Port is the SRV record's port, if one was present.
	Port int

	// TXT holds the decoded "key=value" pairs from the TXT record, if
	// present. A bare token with no "=" is stored with an empty value.
	TXT map[string]string
}
