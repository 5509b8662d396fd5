// SPDX-License-Identifier: GPL-3.0-or-later

package objects

// Kind is an object's immutable kind tag (spec.md §3): a closed
// enumeration known at compile time. New kinds require additive
// extension, never a change to an existing object's Kind.
type Kind string

const (
	KindLoad        Kind = "Load"
	KindRGBLoad     Kind = "RGBLoad"
	KindButton      Kind = "Button"
	KindBlind       Kind = "Blind"
	KindThermostat  Kind = "Thermostat"
	KindTask        Kind = "Task"
	KindGMem        Kind = "GMem"
	KindOmniSensor  Kind = "OmniSensor"
	KindLightSensor Kind = "LightSensor"
	KindAnemoSensor Kind = "AnemoSensor"
)

// Interface names an implemented object interface (spec.md §3). A
// variant may implement more than one.
const (
	IfaceLoad          = "Load"
	IfaceButton        = "Button"
	IfaceBlind         = "Blind"
	IfaceSensor        = "Sensor"
	IfaceTemperature   = "Temperature"
	IfaceThermostat    = "Thermostat"
	IfaceTask          = "Task"
	IfaceGMem          = "GMem"
	IfaceColor         = "Color"
	IfaceRGBLoad       = "RGBLoad"
	IfaceAnemoSensor   = "AnemoSensor"
	IfaceLightSensor   = "LightSensor"
	IfaceOmniSensor    = "OmniSensor"
	IfaceIntrospection = "Introspection"
)

// ChangeKind describes why a controller's subscription callback fired
// (spec.md §3).
type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeUpdated    ChangeKind = "updated"
	ChangeRemoved    ChangeKind = "removed"
	ChangeInitialized ChangeKind = "initialized"
)
