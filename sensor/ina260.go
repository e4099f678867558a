// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// INA260 registers. See the TI datasheet, section 8.6.
const (
	ina260RegConfig     = 0x00
	ina260RegCurrent    = 0x01
	ina260RegBusVoltage = 0x02
	ina260RegPower      = 0x03
	ina260RegMfgID      = 0xFE

	// DefaultINA260Addr is the address with A0 and A1 tied to GND.
	DefaultINA260Addr = 0x40

	// "TI" in ASCII.
	ina260MfgID = 0x5449
)

// INA260 reads bus voltage, current and power from a TI INA260 monitor.
// It implements Source with a single reading.
type INA260 struct {
	name string
	d    *i2c.Dev
}

// NewINA260 opens an INA260 at addr and verifies its manufacturer ID.
// name is the sensor label shown on the display.
func NewINA260(b i2c.Bus, addr uint16, name string) (*INA260, error) {
	if addr == 0 {
		addr = DefaultINA260Addr
	}
	d := &INA260{name: name, d: &i2c.Dev{Bus: b, Addr: addr}}
	id, err := d.readReg(ina260RegMfgID)
	if err != nil {
		return nil, fmt.Errorf("ina260: reading manufacturer ID: %w", err)
	}
	if id != ina260MfgID {
		return nil, fmt.Errorf("ina260: unexpected manufacturer ID %#04x at %#02x", id, addr)
	}
	return d, nil
}

func (d *INA260) String() string {
	return fmt.Sprintf("INA260{%s, %s}", d.name, d.d)
}

// Read returns a single sample of voltage, current and power.
func (d *INA260) Read() (Reading, error) {
	amps, err := d.readReg(ina260RegCurrent)
	if err != nil {
		return Reading{}, fmt.Errorf("ina260: reading current: %w", err)
	}
	volts, err := d.readReg(ina260RegBusVoltage)
	if err != nil {
		return Reading{}, fmt.Errorf("ina260: reading bus voltage: %w", err)
	}
	watts, err := d.readReg(ina260RegPower)
	if err != nil {
		return Reading{}, fmt.Errorf("ina260: reading power: %w", err)
	}

	// LSB weights: 1.25mV, 1.25mA, 10mW. The current register is two's
	// complement; the bus voltage register is always positive.
	return Reading{
		Sensor:     d.name,
		Voltage:    physic.ElectricPotential(volts) * 1250 * physic.MicroVolt,
		Current:    physic.ElectricCurrent(int16(amps)) * 1250 * physic.MicroAmpere,
		Power:      physic.Power(watts) * 10 * physic.MilliWatt,
		HasCurrent: true,
		HasPower:   true,
		Time:       time.Now(),
	}, nil
}

// Readings implements Source.
func (d *INA260) Readings() ([]Reading, error) {
	r, err := d.Read()
	if err != nil {
		return nil, err
	}
	return []Reading{r}, nil
}

func (d *INA260) readReg(reg byte) (uint16, error) {
	var buf [2]byte
	if err := d.d.Tx([]byte{reg}, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}
