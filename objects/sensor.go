// SPDX-License-Identifier: GPL-3.0-or-later

package objects

import (
	"strconv"
	"sync"
)

// sensorValue is the shared last-known-reading state for the sensor
// family (OmniSensor, LightSensor, AnemoSensor all implement Sensor plus
// one specialized interface, spec.md §3).
type sensorValue struct {
	mu    sync.RWMutex
	level float64
	known bool
}

func (s *sensorValue) get() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level, s.known
}

func (s *sensorValue) set(v float64) {
	s.mu.Lock()
	s.level, s.known = v, true
	s.mu.Unlock()
}

// OmniSensor is a generic analog sensor (e.g. a contact or current
// sensor exposed through the catch-all OmniSensor interface).
type OmniSensor struct {
	Object
	sensorValue
}

func (o *OmniSensor) Base() *Object { return &o.Object }

// Level returns the last known sensor reading.
func (o *OmniSensor) Level() (float64, bool) { return o.sensorValue.get() }

// LightSensor reports illuminance.
type LightSensor struct {
	Object
	sensorValue
}

func (l *LightSensor) Base() *Object { return &l.Object }

// Lux returns the last known illuminance reading.
func (l *LightSensor) Lux() (float64, bool) { return l.sensorValue.get() }

// AnemoSensor reports wind speed.
type AnemoSensor struct {
	Object
	sensorValue
}

func (a *AnemoSensor) Base() *Object { return &a.Object }

// WindSpeed returns the last known wind speed reading.
func (a *AnemoSensor) WindSpeed() (float64, bool) { return a.sensorValue.get() }

func init() {
	register(&VariantDef{
		Kind:       KindOmniSensor,
		WireTypes:  []string{"OmniSensor", "Vantage.OmniSensor"},
		Interfaces: []string{IfaceSensor, IfaceOmniSensor},
		New:        func(vid int) Variant { return &OmniSensor{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "OmniSensor.GetLevel", Decode: decodeSensorLevel(func(v Variant) *sensorValue { return &v.(*OmniSensor).sensorValue })},
		},
	})
	register(&VariantDef{
		Kind:       KindLightSensor,
		WireTypes:  []string{"LightSensor", "Vantage.LightSensor"},
		Interfaces: []string{IfaceSensor, IfaceLightSensor},
		New:        func(vid int) Variant { return &LightSensor{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "LightSensor.GetLevel", Decode: decodeSensorLevel(func(v Variant) *sensorValue { return &v.(*LightSensor).sensorValue })},
		},
	})
	register(&VariantDef{
		Kind:       KindAnemoSensor,
		WireTypes:  []string{"AnemoSensor", "Vantage.AnemoSensor"},
		Interfaces: []string{IfaceSensor, IfaceAnemoSensor},
		New:        func(vid int) Variant { return &AnemoSensor{Object: Object{VID: vid}} },
		States: []StateBinding{
			{Method: "AnemoSensor.GetSpeed", Decode: decodeSensorLevel(func(v Variant) *sensorValue { return &v.(*AnemoSensor).sensorValue })},
		},
	})
}

func decodeSensorLevel(access func(Variant) *sensorValue) func(Variant, []string) error {
	return func(v Variant, args []string) error {
		if len(args) == 0 {
			return nil
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		access(v).set(f)
		return nil
	}
}
