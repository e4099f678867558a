// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensor

import (
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

func TestINA260Read(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			// Manufacturer ID check on open.
			{Addr: DefaultINA260Addr, W: []byte{ina260RegMfgID}, R: []byte{0x54, 0x49}},
			// Current: 960 * 1.25mA = 1.2A.
			{Addr: DefaultINA260Addr, W: []byte{ina260RegCurrent}, R: []byte{0x03, 0xC0}},
			// Bus voltage: 9872 * 1.25mV = 12.34V.
			{Addr: DefaultINA260Addr, W: []byte{ina260RegBusVoltage}, R: []byte{0x26, 0x90}},
			// Power: 1480 * 10mW = 14.8W.
			{Addr: DefaultINA260Addr, W: []byte{ina260RegPower}, R: []byte{0x05, 0xC8}},
		},
	}
	d, err := NewINA260(&bus, 0, "Battery")
	if err != nil {
		t.Fatal(err)
	}
	r, err := d.Read()
	if err != nil {
		t.Fatal(err)
	}
	if expected := 12340 * physic.MilliVolt; r.Voltage != expected {
		t.Errorf("voltage %s != %s", r.Voltage, expected)
	}
	if expected := 1200 * physic.MilliAmpere; r.Current != expected {
		t.Errorf("current %s != %s", r.Current, expected)
	}
	if expected := 14800 * physic.MilliWatt; r.Power != expected {
		t.Errorf("power %s != %s", r.Power, expected)
	}
	if !r.HasCurrent || !r.HasPower {
		t.Error("current and power must be marked present")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestINA260RejectsWrongChip(t *testing.T) {
	bus := i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultINA260Addr, W: []byte{ina260RegMfgID}, R: []byte{0x00, 0x00}},
		},
	}
	if _, err := NewINA260(&bus, 0, "Battery"); err == nil {
		t.Fatal("NewINA260() accepted a bogus manufacturer ID")
	}
}
