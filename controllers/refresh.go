// SPDX-License-Identifier: GPL-3.0-or-later

package controllers

import (
	"context"
	"fmt"

	"github.com/go-vantage/vantage/internal/hc"
	"github.com/go-vantage/vantage/objects"
)

// RefreshLoad fetches a load's current level via a synchronous
// Load.GetLevel command and applies it. Shared by Load and RGBLoad
// controllers: RGBLoad's embedded Load state is the same field.
func RefreshLoad(ctx context.Context, client *hc.Client, v objects.Variant) error {
	level, known, err := client.LoadGetLevel(ctx, v.Base().VID)
	if err != nil {
		return err
	}
	if !known {
		return nil
	}
	objects.ApplyState(v, "Load.GetLevel.Sync", []string{fmt.Sprintf("%.3f", level)}, nil)
	return nil
}

// RefreshThermostat fetches all four setpoint sources
// (indoor/outdoor/cool/heat) for a thermostat.
func RefreshThermostat(ctx context.Context, client *hc.Client, v objects.Variant) error {
	sources := map[string]string{
		"indoor":  "Thermostat.GetIndoorTemperature",
		"outdoor": "Thermostat.GetOutdoorTemperature",
		"cool":    "Thermostat.GetCoolSetpoint",
		"heat":    "Thermostat.GetHeatSetpoint",
	}
	vid := v.Base().VID
	var firstErr error
	for src, method := range sources {
		temp, known, err := client.ThermostatGetSetpoint(ctx, vid, src)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !known {
			continue
		}
		objects.ApplyState(v, method, []string{fmt.Sprintf("%.1f", temp)}, nil)
	}
	return firstErr
}

// RefreshGMem fetches a global memory variable's current value,
// dispatching to the string or integer command based on its declared
// type (already known from config decoding by the time Initialize
// schedules a state refresh).
func RefreshGMem(ctx context.Context, client *hc.Client, v objects.Variant) error {
	g := v.(*objects.GMem)
	vid := v.Base().VID
	if g.IsInteger() {
		n, known, err := client.GMemGetInt(ctx, vid)
		if err != nil || !known {
			return err
		}
		objects.ApplyState(v, "VariableVault.GetValue", []string{fmt.Sprintf("%d", n)}, nil)
		return nil
	}
	s, err := client.GMemGetString(ctx, vid)
	if err != nil {
		return err
	}
	objects.ApplyState(v, "VariableVault.GetValue", []string{s}, nil)
	return nil
}

// sensorRefresh returns a [RefreshFunc] issuing a single SensorGet call
// against method for the given sensor kind.
func sensorRefresh(method string) RefreshFunc {
	return func(ctx context.Context, client *hc.Client, v objects.Variant) error {
		value, known, err := client.SensorGet(ctx, v.Base().VID, method)
		if err != nil {
			return err
		}
		if !known {
			return nil
		}
		objects.ApplyState(v, method, []string{fmt.Sprintf("%v", value)}, nil)
		return nil
	}
}

// RefreshOmniSensor fetches an OmniSensor's level.
var RefreshOmniSensor = sensorRefresh("OmniSensor.GetLevel")

// RefreshLightSensor fetches a LightSensor's illuminance.
var RefreshLightSensor = sensorRefresh("LightSensor.GetLevel")

// RefreshAnemoSensor fetches an AnemoSensor's wind speed.
var RefreshAnemoSensor = sensorRefresh("AnemoSensor.GetSpeed")
