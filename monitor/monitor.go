// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the display refresh loop. A single worker goroutine
// owns the display handle: every tick it snapshots the host-owned state,
// composes the matching layout and pushes the frame to the panel. After a
// configurable idle period it relocates the content to a pseudo-random
// offset to protect the OLED from burn-in.
package monitor

import (
	"image"
	"log"
	"math/rand"
	"sync"
	"time"

	"periph.io/x/conn/v3/display"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/frame"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
)

// Snapshot is the host state read at the start of each tick. The worker
// only ever sees the latest snapshot; it holds no locks while drawing.
type Snapshot struct {
	Readings []sensor.Reading
	Race     race.Snapshot
	// Lap is non-nil while a lap-completed notice should be on screen.
	Lap *race.Lap
}

// Source provides the latest host snapshot.
type Source interface {
	Snapshot(now time.Time) Snapshot
}

type state int

const (
	normal state = iota
	burnInProtect
)

// Monitor drives the display. Construct with New, then Start. Halt stops
// the worker and blanks the panel; it is safe to call more than once.
type Monitor struct {
	drawer display.Drawer
	src    Source
	render *frame.Renderer
	cfg    *config.Config

	now func() time.Time
	rng *rand.Rand

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup

	// Refresh state, owned by the worker goroutine.
	st           state
	lastActivity time.Time
	offset       image.Point
}

// New returns a stopped monitor. The drawer becomes exclusively owned by
// the monitor; nothing else may write to it until Halt returns.
func New(d display.Drawer, src Source, r *frame.Renderer, cfg *config.Config) *Monitor {
	return &Monitor{
		drawer: d,
		src:    src,
		render: r,
		cfg:    cfg,
		now:    time.Now,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start launches the refresh worker. Calling Start on a running monitor is
// a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.st = normal
	m.lastActivity = m.now()
	m.offset = image.Point{}
	m.wg.Add(1)
	go m.loop(m.stop)
}

func (m *Monitor) loop(stop chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.UpdateInterval())
	defer ticker.Stop()
	m.tick(m.now())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.tick(m.now())
		}
	}
}

// tick runs one refresh: snapshot, compose, render, draw. A draw failure
// is logged and retried on the next period; the panel keeps its previous
// contents in the meantime.
func (m *Monitor) tick(now time.Time) {
	snap := m.src.Snapshot(now)
	b := m.drawer.Bounds()

	var f frame.Frame
	switch {
	case snap.Lap != nil:
		m.touch(now)
		f = frame.LapNotice(*snap.Lap, m.cfg, b)
	case snap.Race.Status.Active():
		m.touch(now)
		f = frame.Standings(snap.Race, m.cfg, b)
	default:
		if now.Sub(m.lastActivity) > m.cfg.BurnInAfter() {
			m.st = burnInProtect
			m.offset = m.randomOffset(b)
			f = frame.BurnIn(snap.Readings, now, m.cfg, b)
			f.Offset = m.offset
		} else {
			m.st = normal
			m.offset = image.Point{}
			f = frame.Voltage(snap.Readings, snap.Race.Status.Banner(), now, m.cfg, b)
		}
	}

	img := m.render.Render(f, b)
	if err := m.drawer.Draw(b, img, image.Point{}); err != nil {
		log.Printf("monitor: draw failed: %v", err)
	}
}

// touch records race or lap activity: the idle timer restarts and burn-in
// protection disengages.
func (m *Monitor) touch(now time.Time) {
	m.st = normal
	m.lastActivity = now
	m.offset = image.Point{}
}

// randomOffset picks a relocation vector that keeps the burn-in layout
// (roughly 50x30 px) fully on the panel. The margin is at least one pixel,
// so the offset is never the origin.
func (m *Monitor) randomOffset(b image.Rectangle) image.Point {
	margin := m.cfg.Display.BurnInMargin
	maxX := b.Dx() - 50 - margin
	maxY := b.Dy() - 30 - margin
	if maxX < margin {
		maxX = margin
	}
	if maxY < margin {
		maxY = margin
	}
	return image.Point{
		X: margin + m.rng.Intn(maxX-margin+1),
		Y: margin + m.rng.Intn(maxY-margin+1),
	}
}

// Halt stops the worker, blanks the panel and powers the display down.
func (m *Monitor) Halt() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop == nil {
		return nil
	}
	close(m.stop)
	m.wg.Wait()
	m.stop = nil

	b := m.drawer.Bounds()
	blank := m.render.Render(frame.Frame{}, b)
	if err := m.drawer.Draw(b, blank, image.Point{}); err != nil {
		return err
	}
	return m.drawer.Halt()
}
