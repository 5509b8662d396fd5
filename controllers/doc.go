// SPDX-License-Identifier: GPL-3.0-or-later

// Package controllers implements one [Controller] per object kind
// family: lazy config enumeration, in-memory Get/Filter queries, change
// subscriptions, and state refresh (bounded fan-out, reconnect resync).
package controllers
