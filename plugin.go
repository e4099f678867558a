// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oleddisplay

import (
	"fmt"
	"log"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/frame"
	"github.com/rhtools/oleddisplay/monitor"
	"github.com/rhtools/oleddisplay/oled"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
)

// Plugin is the surface the race server drives. The host registers
// Startup/Shutdown against its lifecycle events and forwards sensor, race
// and lap updates; everything else runs on the plugin's own worker.
type Plugin struct {
	cfg   *config.Config
	state *State

	mu  sync.Mutex
	bus i2c.BusCloser
	mon *monitor.Monitor
}

// New returns an idle plugin. A nil config selects the defaults.
func New(cfg *config.Config) *Plugin {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Plugin{cfg: cfg, state: NewState(cfg)}
}

// State exposes the snapshot store, mainly for the standalone runner.
func (p *Plugin) State() *State { return p.state }

// Startup opens the I2C bus, probes for the display and starts the refresh
// worker. Called from the host's startup event.
func (p *Plugin) Startup() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mon != nil {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("oleddisplay: initializing host drivers: %w", err)
	}
	b, err := i2creg.Open(p.cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("oleddisplay: opening I2C bus: %w", err)
	}
	dev, err := oled.Open(b, p.cfg.Display)
	if err != nil {
		b.Close()
		return err
	}
	p.bus = b
	p.startLocked(dev)
	log.Printf("oleddisplay: display worker started on %s", dev)
	return nil
}

// StartWith runs the refresh worker against an arbitrary display, such as
// the terminal or HTTP previews. The caller keeps ownership of nothing:
// the worker owns the drawer until Shutdown.
func (p *Plugin) StartWith(d display.Drawer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mon != nil {
		return
	}
	p.startLocked(d)
}

func (p *Plugin) startLocked(d display.Drawer) {
	p.mon = monitor.New(d, p.state, frame.NewRenderer(p.cfg.Font), p.cfg)
	p.mon.Start()
}

// Shutdown stops the worker, clears the display and releases the bus.
// Called from the host's shutdown event; safe to call when never started.
func (p *Plugin) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.mon != nil {
		err = p.mon.Halt()
		p.mon = nil
	}
	if p.bus != nil {
		if cerr := p.bus.Close(); err == nil {
			err = cerr
		}
		p.bus = nil
	}
	return err
}

// HandleLapRecorded is the host's lap event callback.
func (p *Plugin) HandleLapRecorded(lap race.Lap) {
	p.state.RecordLap(lap, time.Now())
	log.Printf("oleddisplay: lap recorded: %s lap %d in %s", lap.Pilot, lap.Number, lap.Time)
}

// UpdateRace is the host's race state callback.
func (p *Plugin) UpdateRace(snap race.Snapshot) {
	p.state.UpdateRace(snap)
}

// UpdateReadings is the host's sensor data callback.
func (p *Plugin) UpdateReadings(rs []sensor.Reading) {
	p.state.UpdateReadings(rs)
}
