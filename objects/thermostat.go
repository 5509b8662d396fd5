// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"strconv"
	"sync"
)

// FanMode is a thermostat's fan control state.
type FanMode string

const (
	FanOn   FanMode = "on"
	FanAuto FanMode = "auto"
)

// OpMode is a thermostat's operating mode.
type OpMode string

const (
	OpOff  OpMode = "off"
	OpCool OpMode = "cool"
	OpHeat OpMode = "heat"
	OpAuto OpMode = "auto"
)

// DayMode is a thermostat's day/night schedule state.
type DayMode string

const (
	DayDay   DayMode = "day"
	DayNight DayMode = "night"
)

// Thermostat is an HVAC controller. Setpoints are keyed by source
// (indoor, outdoor, cool, heat) per spec.md §4.E's get_setpoint family.
type Thermostat struct {
	Object

	mu        sync.RWMutex
	setpoints map[string]float64
	fan       FanMode
	fanKnown  bool
	op        OpMode
	opKnown   bool
	day       DayMode
	dayKnown  bool
}

func (t *Thermostat) Base() *Object { return &t.Object }

// Setpoint returns the last known setpoint for src ("indoor", "outdoor",
// "cool", "heat").
func (t *Thermostat) Setpoint(src string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.setpoints[src]
	return v, ok
}

func (t *Thermostat) setSetpoint(src string, temp float64) {
	t.mu.Lock()
	if t.setpoints == nil {
		t.setpoints = map[string]float64{}
	}
	t.setpoints[src] = temp
	t.mu.Unlock()
}

// Fan returns the last known fan mode.
func (t *Thermostat) Fan() (FanMode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fan, t.fanKnown
}

// Op returns the last known operating mode.
func (t *Thermostat) Op() (OpMode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.op, t.opKnown
}

// Day returns the last known day/night mode.
func (t *Thermostat) Day() (DayMode, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.day, t.dayKnown
}

func init() {
	register(&VariantDef{
		Kind:       KindThermostat,
		WireTypes:  []string{"Thermostat", "Vantage.Thermostat"},
		Interfaces: []string{IfaceThermostat, IfaceTemperature},
		New:        func(vid int) Variant { return &Thermostat{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "Thermostat.GetIndoorTemperature", Decode: decodeSetpoint("indoor")},
			{Method: "Thermostat.GetOutdoorTemperature", Decode: decodeSetpoint("outdoor")},
			{Method: "Thermostat.GetCoolSetpoint", Decode: decodeSetpoint("cool")},
			{Method: "Thermostat.GetHeatSetpoint", Decode: decodeSetpoint("heat")},
			{Method: "Thermostat.GetFanMode", Decode: decodeFanMode},
			{Method: "Thermostat.GetOperationMode", Decode: decodeOpMode},
			{Method: "Thermostat.GetDayMode", Decode: decodeDayMode},
		},
	})
}

func decodeSetpoint(src string) func(Variant, []string) error {
	return func(v Variant, args []string) error {
		t := v.(*Thermostat)
		if len(args) == 0 {
			return nil
		}
		temp, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		t.setSetpoint(src, temp)
		return nil
	}
}

func decodeFanMode(v Variant, args []string) error {
	t := v.(*Thermostat)
	if len(args) == 0 {
		return nil
	}
	t.mu.Lock()
	if args[0] == "1" || args[0] == "On" {
		t.fan = FanOn
	} else {
		t.fan = FanAuto
	}
	t.fanKnown = true
	t.mu.Unlock()
	return nil
}

func decodeOpMode(v Variant, args []string) error {
	t := v.(*Thermostat)
	if len(args) == 0 {
		return nil
	}
	t.mu.Lock()
	switch args[0] {
	case "1", "Heat":
		t.op = OpHeat
	case "2", "Cool":
		t.op = OpCool
	case "3", "Auto":
		t.op = OpAuto
	default:
		t.op = OpOff
	}
	t.opKnown = true
	t.mu.Unlock()
	return nil
}

func decodeDayMode(v Variant, args []string) error {
	t := v.(*Thermostat)
	if len(args) == 0 {
		return nil
	}
	t.mu.Lock()
	if args[0] == "1" || args[0] == "Night" {
		t.day = DayNight
	} else {
		t.day = DayDay
	}
	t.dayKnown = true
	t.mu.Unlock()
	return nil
}
