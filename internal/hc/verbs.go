// SPDX-License-Identifier: GPL-3.0-or-later

package hc

import (
	"context"
	"fmt"

	"github.com/go-vantage/vantage/verror"
)

// enumOneOf validates that value is one of allowed, returning a
// [verror.KindProtocol] error naming the offending argument otherwise.
// The typed helpers below use this instead of letting the controller
// reject an out-of-range argument round-trip.
func enumOneOf(arg, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return verror.New(verror.KindProtocol, "hc.verbs", fmt.Errorf("hc: invalid %s %q, want one of %v", arg, value, allowed))
}

// LoadSetLevel sets a load to pct (0..100).
func (c *Client) LoadSetLevel(ctx context.Context, vid int, pct float64) error {
	_, err := c.Invoke(ctx, vid, "Load.SetLevel", EncodeLevel(pct))
	return err
}

// LoadGetLevel returns the load's current level (0..100), or known=false
// if the controller reports it as unknown.
func (c *Client) LoadGetLevel(ctx context.Context, vid int) (level float64, known bool, err error) {
	res, err := c.Invoke(ctx, vid, "Load.GetLevel")
	if err != nil {
		return 0, false, err
	}
	if len(res) == 0 {
		return 0, false, verror.New(verror.KindProtocol, "hc.Client.LoadGetLevel", errEmptyResult)
	}
	return ParseFloatOrUnknown(res[0])
}

// LoadRamp ramps a load to pct over the given number of seconds.
func (c *Client) LoadRamp(ctx context.Context, vid int, pct float64, seconds float64) error {
	_, err := c.Invoke(ctx, vid, "Load.Ramp", EncodeLevel(pct), fmt.Sprintf("%.1f", seconds))
	return err
}

// LoadTurnOn is equivalent to LoadSetLevel(vid, 100).
func (c *Client) LoadTurnOn(ctx context.Context, vid int) error {
	return c.LoadSetLevel(ctx, vid, 100)
}

// LoadTurnOff is equivalent to LoadSetLevel(vid, 0).
func (c *Client) LoadTurnOff(ctx context.Context, vid int) error {
	return c.LoadSetLevel(ctx, vid, 0)
}

// ButtonPress simulates a button press.
func (c *Client) ButtonPress(ctx context.Context, vid int) error {
	_, err := c.Invoke(ctx, vid, "Button.Press")
	return err
}

// ButtonRelease simulates a button release.
func (c *Client) ButtonRelease(ctx context.Context, vid int) error {
	_, err := c.Invoke(ctx, vid, "Button.Release")
	return err
}

// BlindOpen fully opens a blind.
func (c *Client) BlindOpen(ctx context.Context, vid int) error {
	_, err := c.Invoke(ctx, vid, "Blind.Open")
	return err
}

// BlindClose fully closes a blind.
func (c *Client) BlindClose(ctx context.Context, vid int) error {
	_, err := c.Invoke(ctx, vid, "Blind.Close")
	return err
}

// BlindStop stops a moving blind.
func (c *Client) BlindStop(ctx context.Context, vid int) error {
	_, err := c.Invoke(ctx, vid, "Blind.Stop")
	return err
}

// BlindSetPosition moves a blind to pct (0..100, 0=closed).
func (c *Client) BlindSetPosition(ctx context.Context, vid int, pct float64) error {
	_, err := c.Invoke(ctx, vid, "Blind.SetPosition", EncodeLevel(pct))
	return err
}

// ThermostatSetSetpoint sets the cool or heat setpoint.
func (c *Client) ThermostatSetSetpoint(ctx context.Context, vid int, mode string, temp float64) error {
	if err := enumOneOf("mode", mode, "cool", "heat"); err != nil {
		return err
	}
	_, err := c.Invoke(ctx, vid, "Thermostat.SetSetpoint", mode, EncodeCelsius(temp))
	return err
}

// ThermostatGetSetpoint reads back a setpoint or sensed temperature
// source.
func (c *Client) ThermostatGetSetpoint(ctx context.Context, vid int, src string) (temp float64, known bool, err error) {
	if err := enumOneOf("src", src, "indoor", "outdoor", "cool", "heat"); err != nil {
		return 0, false, err
	}
	res, err := c.Invoke(ctx, vid, "Thermostat.GetSetpoint", src)
	if err != nil {
		return 0, false, err
	}
	if len(res) == 0 {
		return 0, false, verror.New(verror.KindProtocol, "hc.Client.ThermostatGetSetpoint", errEmptyResult)
	}
	return ParseFloatOrUnknown(res[0])
}

// ThermostatSetFan sets the fan mode ("on" or "auto").
func (c *Client) ThermostatSetFan(ctx context.Context, vid int, mode string) error {
	if err := enumOneOf("mode", mode, "on", "auto"); err != nil {
		return err
	}
	_, err := c.Invoke(ctx, vid, "Thermostat.SetFan", mode)
	return err
}

// ThermostatSetOp sets the operating mode.
func (c *Client) ThermostatSetOp(ctx context.Context, vid int, mode string) error {
	if err := enumOneOf("mode", mode, "off", "cool", "heat", "auto"); err != nil {
		return err
	}
	_, err := c.Invoke(ctx, vid, "Thermostat.SetOp", mode)
	return err
}

// ThermostatSetDay sets day/night mode.
func (c *Client) ThermostatSetDay(ctx context.Context, vid int, mode string) error {
	if err := enumOneOf("mode", mode, "day", "night"); err != nil {
		return err
	}
	_, err := c.Invoke(ctx, vid, "Thermostat.SetDay", mode)
	return err
}

// SensorGet reads one of a sensor's get_* methods (e.g. "Sensor.GetLevel",
// "AnemoSensor.GetSpeed"), returning a float in the unit that method
// defines for its kind.
func (c *Client) SensorGet(ctx context.Context, vid int, method string) (value float64, known bool, err error) {
	res, err := c.Invoke(ctx, vid, method)
	if err != nil {
		return 0, false, err
	}
	if len(res) == 0 {
		return 0, false, verror.New(verror.KindProtocol, "hc.Client.SensorGet", errEmptyResult)
	}
	return ParseFloatOrUnknown(res[0])
}

// GMemGetString reads a string-typed variable.
func (c *Client) GMemGetString(ctx context.Context, vid int) (string, error) {
	res, err := c.Invoke(ctx, vid, "GMem.GetValue")
	if err != nil {
		return "", err
	}
	if len(res) == 0 {
		return "", verror.New(verror.KindProtocol, "hc.Client.GMemGetString", errEmptyResult)
	}
	return res[0], nil
}

// GMemSetString writes a string-typed variable.
func (c *Client) GMemSetString(ctx context.Context, vid int, value string) error {
	_, err := c.Invoke(ctx, vid, "GMem.SetValue", value)
	return err
}

// GMemGetInt reads an integer-typed variable.
func (c *Client) GMemGetInt(ctx context.Context, vid int) (value int, known bool, err error) {
	res, err := c.Invoke(ctx, vid, "GMem.GetValue")
	if err != nil {
		return 0, false, err
	}
	if len(res) == 0 {
		return 0, false, verror.New(verror.KindProtocol, "hc.Client.GMemGetInt", errEmptyResult)
	}
	return ParseIntOrUnknown(res[0])
}

// GMemSetInt writes an integer-typed variable.
func (c *Client) GMemSetInt(ctx context.Context, vid int, value int) error {
	_, err := c.Invoke(ctx, vid, "GMem.SetValue", fmt.Sprintf("%d", value))
	return err
}

// taskEvents is the closed set of Task.Trigger event names (spec.md §4.E).
var taskEvents = []string{
	"press", "release", "hold", "timer", "data", "position", "inrange",
	"outofrange", "temperature", "daymode", "fanmode", "operationmode",
	"connect", "disconnect", "boot", "learn", "cancel", "none",
}

// TaskTrigger fires a task with the given event name.
func (c *Client) TaskTrigger(ctx context.Context, vid int, event string) error {
	if err := enumOneOf("event", event, taskEvents...); err != nil {
		return err
	}
	_, err := c.Invoke(ctx, vid, "Task.Trigger", event)
	return err
}

var errEmptyResult = fmt.Errorf("hc: empty result")
