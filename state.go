// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oleddisplay

import (
	"sync"
	"time"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/monitor"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
)

// State is the shared snapshot store between the host callbacks and the
// display worker. The host writes the latest sensor and race data; the
// worker reads a consistent copy once per tick.
type State struct {
	mu       sync.Mutex
	filter   sensor.Filter
	lapHold  time.Duration
	readings []sensor.Reading
	race     race.Snapshot
	lap      *race.Lap
	lapUntil time.Time
}

// NewState returns an empty store using the configured sensor filter and
// lap-notice hold time.
func NewState(cfg *config.Config) *State {
	return &State{
		filter: sensor.Filter{
			Include:    cfg.Sensors.Include,
			Exclude:    cfg.Sensors.Exclude,
			MinVoltage: cfg.Sensors.MinVoltage,
		},
		lapHold: cfg.LapNoticeHold(),
	}
}

// UpdateReadings replaces the stored sensor readings, applying the filter.
func (s *State) UpdateReadings(rs []sensor.Reading) {
	filtered := s.filter.Apply(rs)
	s.mu.Lock()
	s.readings = filtered
	s.mu.Unlock()
}

// UpdateRace replaces the stored race snapshot.
func (s *State) UpdateRace(snap race.Snapshot) {
	s.mu.Lock()
	s.race = snap
	s.mu.Unlock()
}

// RecordLap stores a lap-completed notice; the display shows it until the
// hold time elapses.
func (s *State) RecordLap(lap race.Lap, now time.Time) {
	s.mu.Lock()
	s.lap = &lap
	s.lapUntil = now.Add(s.lapHold)
	s.mu.Unlock()
}

// Snapshot implements monitor.Source. Expired lap notices are dropped.
func (s *State) Snapshot(now time.Time) monitor.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lap != nil && !now.Before(s.lapUntil) {
		s.lap = nil
	}
	snap := monitor.Snapshot{
		Readings: append([]sensor.Reading(nil), s.readings...),
		Race:     s.race,
	}
	if s.lap != nil {
		lap := *s.lap
		snap.Lap = &lap
	}
	return snap
}
