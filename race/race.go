// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package race models the slice of the race server's state that the display
// consumes: the current race status, live standings and lap notices.
package race

import "strings"

// Status mirrors the host's race state values.
type Status int

const (
	Ready Status = iota
	Staging
	Racing
	Done
)

// Active reports whether a race is staging or running. The display switches
// from the voltage layout to standings while a race is active.
func (s Status) Active() bool {
	return s == Staging || s == Racing
}

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case Staging:
		return "staging"
	case Racing:
		return "racing"
	case Done:
		return "done"
	}
	return "unknown"
}

// Banner is the header line shown while a race is underway.
func (s Status) Banner() string {
	switch s {
	case Staging:
		return "Race: Staging"
	case Racing:
		return "Race: Running"
	case Done:
		return "Race: Finished"
	}
	return ""
}

// Standing is one pilot's row in the live results, ordered by race time.
type Standing struct {
	Position   int
	Callsign   string
	FastestLap string
}

// Lap is a completed-lap notice.
type Lap struct {
	Pilot    string
	Number   int
	Time     string
	Position int
}

// Snapshot is the host-owned race state read by the display worker.
type Snapshot struct {
	Status    Status
	Standings []Standing
}

// ShortCallsign trims a callsign so a standings row fits the panel width.
func ShortCallsign(callsign string) string {
	if len(callsign) > 6 {
		return callsign[:6]
	}
	return callsign
}

// ShortLapTime drops the leading "0:" from sub-minute lap times.
func ShortLapTime(t string) string {
	return strings.TrimPrefix(t, "0:")
}
