// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oled

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/rhtools/oleddisplay/config"
)

// probeBus answers only at the configured addresses and records which
// addresses were touched.
type probeBus struct {
	present map[uint16]bool
	probed  []uint16
}

func (p *probeBus) String() string { return "probeBus" }

func (p *probeBus) Tx(addr uint16, w, r []byte) error {
	p.probed = append(p.probed, addr)
	if !p.present[addr] {
		return errors.New("i2c: no ack")
	}
	return nil
}

func (p *probeBus) SetSpeed(f physic.Frequency) error { return nil }

var _ i2c.Bus = &probeBus{}

func TestProbeFirstAddressWins(t *testing.T) {
	bus := &probeBus{present: map[uint16]bool{0x3C: true, 0x3D: true}}
	addr, err := Probe(bus, []uint16{0x3C, 0x3D})
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0x3C {
		t.Errorf("Probe() = %#02x, want 0x3c", addr)
	}
	// 0x3D must never be addressed once 0x3C answered.
	if len(bus.probed) != 1 || bus.probed[0] != 0x3C {
		t.Errorf("probed %#02x, want only 0x3c", bus.probed)
	}
}

func TestProbeFallsBack(t *testing.T) {
	bus := &probeBus{present: map[uint16]bool{0x3D: true}}
	addr, err := Probe(bus, []uint16{0x3C, 0x3D})
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0x3D {
		t.Errorf("Probe() = %#02x, want 0x3d", addr)
	}
}

func TestOpenUsesProbedAddress(t *testing.T) {
	// Panel strapped to the secondary address: 0x3C misses, 0x3D answers.
	bus := &probeBus{present: map[uint16]bool{0x3D: true}}
	dev, err := Open(bus, config.Default().Display)
	if err != nil {
		t.Fatal(err)
	}
	if dev == nil {
		t.Fatal("Open() returned no device")
	}
	// The failed 0x3C probe is the only 0x3C transaction; the driver's
	// whole init sequence must go to the address that answered.
	var miss, init int
	for _, a := range bus.probed {
		switch a {
		case 0x3C:
			miss++
		case 0x3D:
			init++
		default:
			t.Fatalf("transaction at unexpected address %#02x", a)
		}
	}
	if miss != 1 {
		t.Errorf("%d transactions at 0x3c, want only the probe miss", miss)
	}
	if init < 2 {
		t.Errorf("%d transactions at 0x3d, want probe plus driver init", init)
	}
}

func TestProbeNotFound(t *testing.T) {
	bus := &probeBus{present: map[uint16]bool{}}
	_, err := Probe(bus, []uint16{0x3C, 0x3D})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Probe() error = %v, want NotFoundError", err)
	}
	if len(bus.probed) != 2 {
		t.Errorf("probed %#02x, want both candidates tried", bus.probed)
	}
}
