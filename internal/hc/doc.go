// SPDX-License-Identifier: GPL-3.0-or-later

// Package hc implements the Vantage Host Command protocol: a reconnecting
// CRLF line transport ([Transport]) carrying a pipelined FIFO
// request/response command channel ([Client]) multiplexed with
// asynchronous status and enhanced-log push lines.
//
// [Client.Invoke] is the single primitive behind every typed helper in
// verbs.go ("Interface.Method" generic invocation); numeric.go implements
// the wire's percent/millipercent/Celsius encodings exactly.
package hc
