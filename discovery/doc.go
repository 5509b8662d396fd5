// SPDX-License-Identifier: GPL-3.0-or-later

// Package discovery implements the optional mDNS/DNS-SD controller lookup
// named but not required by spec.md §6: "the library consumes these if
// asked; not required." [Browse] is never called on the [Session]
// construction path — a caller wanting it invokes it explicitly, then
// passes the resulting host to [Session].
package discovery
