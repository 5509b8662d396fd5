// SPDX-License-Identifier: GPL-3.0-or-later

// Package vantage is a client library for Vantage InFusion home-automation
// controllers. It exposes the controller's dual-protocol runtime (an ACI
// config channel and a Host Command line channel) as typed, observable
// in-memory objects: loads, RGB loads, buttons, blinds, thermostats, tasks,
// variables, and sensors.
//
// Construct a [Session] with [NewSession], [Session.Open] it, then query or
// subscribe through its per-kind controller fields ([Session.Loads],
// [Session.Buttons], and so on). [Session.Close] tears both channels down
// and cancels any work the session started.
package vantage
