// SPDX-License-Identifier: GPL-3.0-or-later

// Package objects decodes raw [aci.RawObject] attribute records and
// Host Command state events into typed, observable variants.
//
// Each kind of controllable object (Load, Button, Blind, Thermostat, ...)
// is a closed, compile-time enumerated variant declared in its own file
// (load.go, button.go, ...). A variant declares its wire type names, the
// interfaces it implements, a field-binding table mapping config XML
// paths to struct fields, and a state-binding table mapping
// "Interface.Method" state events to setters. [Decode] and [ApplyState]
// interpret those tables; callers never switch on kind themselves.
package objects
