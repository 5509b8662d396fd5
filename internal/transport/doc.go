// SPDX-License-Identifier: GPL-3.0-or-later

// Package transport dials the two Vantage channels — ACI config and Host
// Command — over either TLS or plain TCP.
//
// [Dial] resolves the host, then runs a fixed four-stage sequence for one
// [DialConfig]: connect ([ConnectFunc]), bind context cancellation to connection close
// ([CancelWatchFunc]), negotiate TLS under a [VerifyMode] when the channel
// requires it ([TLSHandshakeFunc]), and wrap the result for structured I/O
// logging ([ObserveConnFunc]). Each stage is independently unit-testable
// against stub dialers, TLS engines, and connections.
package transport
