// SPDX-License-Identifier: GPL-3.0-or-later

package hc

import (
	"fmt"
	"strconv"
	"strings"
)

// unknownToken is how the controller spells an absent/none value on the
// wire: either this literal token or an empty argument (spec.md §4.E).
const unknownToken = "-"

// EncodeLevel formats a load level (0..100) as the three-decimal
// percentage string the wire expects.
func EncodeLevel(pct float64) string {
	return fmt.Sprintf("%.3f", pct)
}

// DecodeMillipercent converts a state-event millipercent integer
// (0..100000, as carried by Load.GetLevel push events) to a 0..100 level.
func DecodeMillipercent(n int) float64 {
	return float64(n) / 1000.0
}

// EncodeCelsius formats a thermostat setpoint with the one-decimal
// precision the wire expects.
func EncodeCelsius(temp float64) string {
	return fmt.Sprintf("%.1f", temp)
}

// ParseFloatOrUnknown parses a wire token as a float, treating the
// unknown token or an empty string as "unknown" rather than an error.
func ParseFloatOrUnknown(s string) (value float64, known bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == unknownToken {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// ParseIntOrUnknown parses a wire token as an integer, treating the
// unknown token or an empty string as "unknown" rather than an error.
func ParseIntOrUnknown(s string) (value int, known bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == unknownToken {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
