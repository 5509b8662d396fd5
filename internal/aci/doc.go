// SPDX-License-Identifier: GPL-3.0-or-later

// Package aci implements the Vantage Application Communication Interface
// (ACI) config protocol: framed XML request/response exchanges used to
// log in, introspect a controller, and enumerate or fetch its configured
// objects.
//
// [FrameReader] implements the wire framing rule (read until the closing
// tag matching the opening tag at depth zero) without interpreting
// element bodies. [Client] builds on it to expose the four ACI operation
// families as typed Go methods.
package aci
