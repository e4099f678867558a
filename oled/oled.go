// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oled locates the display on the I2C bus and opens the ssd1306
// driver, which handles the SSD1306/SH1106 wire protocol itself.
package oled

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"

	"github.com/rhtools/oleddisplay/config"
)

// NotFoundError reports that none of the candidate addresses answered.
// The installer treats this as a warning, not a fatal failure.
type NotFoundError struct {
	Bus   string
	Addrs []uint16
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no OLED display found on %s at %#02x", e.Bus, e.Addrs)
}

// Probe tries each address in order with a 1-byte status read and returns
// the first one that answers. Later addresses are not touched once a
// display responds.
func Probe(b i2c.Bus, addrs []uint16) (uint16, error) {
	for _, addr := range addrs {
		d := &i2c.Dev{Bus: b, Addr: addr}
		var status [1]byte
		if err := d.Tx([]byte{0}, status[:]); err == nil {
			return addr, nil
		}
	}
	return 0, &NotFoundError{Bus: b.String(), Addrs: addrs}
}

// addrBus pins every transaction to a fixed address. The ssd1306 driver
// always talks to 0x3C; panels strapped to 0x3D need the redirect.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(addr uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// Open probes the configured addresses and initializes the display at the
// first responding one. The driver detects the SSD1306/SH1106/SH1107
// variant on its own.
func Open(b i2c.Bus, cfg config.DisplayConfig) (*ssd1306.Dev, error) {
	addr, err := Probe(b, cfg.Addresses)
	if err != nil {
		return nil, err
	}
	opts := ssd1306.DefaultOpts
	opts.W = cfg.Width
	opts.H = cfg.Height
	opts.Rotated = cfg.Rotated
	if opts.H == 32 {
		opts.Sequential = true
	}
	dev, err := ssd1306.NewI2C(&addrBus{Bus: b, addr: addr}, &opts)
	if err != nil {
		return nil, fmt.Errorf("oled: initializing display at %#02x: %w", addr, err)
	}
	return dev, nil
}
