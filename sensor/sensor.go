// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensor defines the voltage readings shown on the display and the
// sources that produce them.
package sensor

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// Reading is one sensor sample. Voltage is always present; current and
// power are reported only by sensors that measure them.
type Reading struct {
	Sensor  string
	Voltage physic.ElectricPotential
	Current physic.ElectricCurrent
	Power   physic.Power
	// HasCurrent and HasPower mark which optional fields are valid, so a
	// genuine 0A reading is distinguishable from "not measured".
	HasCurrent bool
	HasPower   bool
	Time       time.Time
}

// Volts returns the voltage in volts.
func (r Reading) Volts() float64 {
	return float64(r.Voltage) / float64(physic.Volt)
}

// Amps returns the current in amperes.
func (r Reading) Amps() float64 {
	return float64(r.Current) / float64(physic.Ampere)
}

// Watts returns the power in watts.
func (r Reading) Watts() float64 {
	return float64(r.Power) / float64(physic.Watt)
}

// Source produces the latest readings. The display worker treats a source
// as a snapshot provider; a failed read is not fatal to the refresh loop.
type Source interface {
	Readings() ([]Reading, error)
}

// Filter selects which readings reach the display.
type Filter struct {
	// Include restricts to the named sensors. Empty means all.
	Include []string
	Exclude []string
	// MinVoltage drops readings below this many volts. Filters out
	// disconnected channels that report near zero.
	MinVoltage float64
}

// Apply returns the readings that pass the filter, preserving order.
func (f Filter) Apply(in []Reading) []Reading {
	var out []Reading
	for _, r := range in {
		if len(f.Include) > 0 && !contains(f.Include, r.Sensor) {
			continue
		}
		if contains(f.Exclude, r.Sensor) {
			continue
		}
		if r.Volts() < f.MinVoltage {
			continue
		}
		out = append(out, r)
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
