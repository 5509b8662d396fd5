// SPDX-License-Identifier: GPL-3.0-or-later

// Package events implements the Host Command controller's three
// subscription mechanisms (category STATUS, per-object ADDSTATUS, and
// enhanced-log ELLOG) as a [*Dispatcher] that issues the wire commands
// and fans incoming lines out to bounded-buffer [*Subscription] callbacks,
// each with its own consumer goroutine so a slow callback cannot stall
// the socket reader.
package events
