// SPDX-License-Identifier: GPL-3.0-or-later

package controllers

import (
	"context"

	"github.com/go-vantage/vantage/objects"
)

// Set bundles one controller per supported kind family, wired to the
// same channel clients. Construct with [NewSet].
type Set struct {
	Loads        *Controller[*objects.Load]
	RGBLoads     *Controller[*objects.RGBLoad]
	Buttons      *Controller[*objects.Button]
	Blinds       *Controller[*objects.Blind]
	Thermostats  *Controller[*objects.Thermostat]
	Tasks        *Controller[*objects.Task]
	GMems        *Controller[*objects.GMem]
	OmniSensors  *Controller[*objects.OmniSensor]
	LightSensors *Controller[*objects.LightSensor]
	AnemoSensors *Controller[*objects.AnemoSensor]
}

// NewSet constructs every controller over the shared deps.
func NewSet(deps Deps) *Set {
	return &Set{
		Loads:        New[*objects.Load](deps, objects.WireTypesFor(objects.KindLoad), RefreshLoad),
		RGBLoads:     New[*objects.RGBLoad](deps, objects.WireTypesFor(objects.KindRGBLoad), RefreshLoad),
		Buttons:      New[*objects.Button](deps, objects.WireTypesFor(objects.KindButton), nil),
		Blinds:       New[*objects.Blind](deps, objects.WireTypesFor(objects.KindBlind), nil),
		Thermostats:  New[*objects.Thermostat](deps, objects.WireTypesFor(objects.KindThermostat), RefreshThermostat),
		Tasks:        New[*objects.Task](deps, objects.WireTypesFor(objects.KindTask), nil),
		GMems:        New[*objects.GMem](deps, objects.WireTypesFor(objects.KindGMem), RefreshGMem),
		OmniSensors:  New[*objects.OmniSensor](deps, objects.WireTypesFor(objects.KindOmniSensor), RefreshOmniSensor),
		LightSensors: New[*objects.LightSensor](deps, objects.WireTypesFor(objects.KindLightSensor), RefreshLightSensor),
		AnemoSensors: New[*objects.AnemoSensor](deps, objects.WireTypesFor(objects.KindAnemoSensor), RefreshAnemoSensor),
	}
}

// InitializeAll runs Initialize on every controller in the set.
func (s *Set) InitializeAll(ctx context.Context, fetchState bool) error {
	for _, init := range []func(context.Context, bool) error{
		s.Loads.Initialize,
		s.RGBLoads.Initialize,
		s.Buttons.Initialize,
		s.Blinds.Initialize,
		s.Thermostats.Initialize,
		s.Tasks.Initialize,
		s.GMems.Initialize,
		s.OmniSensors.Initialize,
		s.LightSensors.Initialize,
		s.AnemoSensors.Initialize,
	} {
		if err := init(ctx, fetchState); err != nil {
			return err
		}
	}
	return nil
}

// ResyncAll runs Resync on every controller in the set. Wire this as the
// Session's resync hook.
func (s *Set) ResyncAll(ctx context.Context) error {
	for _, resync := range []func(context.Context) error{
		s.Loads.Resync,
		s.RGBLoads.Resync,
		s.Buttons.Resync,
		s.Blinds.Resync,
		s.Thermostats.Resync,
		s.Tasks.Resync,
		s.GMems.Resync,
		s.OmniSensors.Resync,
		s.LightSensors.Resync,
		s.AnemoSensors.Resync,
	} {
		if err := resync(ctx); err != nil {
			return err
		}
	}
	return nil
}
