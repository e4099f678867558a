// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package frame composes the fixed text layouts shown on the OLED panel and
// renders them into the 1-bit framebuffer the display controller accepts.
//
// A Frame is recomputed on every refresh tick and never persisted. All
// layouts target the panel bounds; lines that would not fit are dropped, in
// the same way the voltage list stops before running off the bottom edge.
package frame

import (
	"fmt"
	"image"
	"time"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
)

// Mode identifies which layout a frame holds.
type Mode int

const (
	// ModeVoltage is the idle voltage/current summary.
	ModeVoltage Mode = iota
	// ModeStandings shows live race results.
	ModeStandings
	// ModeLap shows a completed-lap notice.
	ModeLap
	// ModeBurnIn is the minimal layout used for burn-in protection.
	ModeBurnIn
)

// Line is one piece of text at a fixed position.
type Line struct {
	Text string
	At   image.Point
}

// Frame is an ordered set of text lines plus horizontal rules, with a
// burn-in offset vector applied to everything at render time.
type Frame struct {
	Mode   Mode
	Lines  []Line
	Rules  []int
	Offset image.Point
}

// add appends a line, dropping it when it would fall outside the bounds.
func (f *Frame) add(text string, x, y int, b image.Rectangle) {
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	f.Lines = append(f.Lines, Line{Text: text, At: image.Point{X: x, Y: y}})
}

// FormatVolts renders a voltage in volts, e.g. 12.34 -> "12.34V".
func FormatVolts(v float64, decimals int) string {
	return fmt.Sprintf("%.*fV", decimals, v)
}

// FormatAmps renders a current in amperes, e.g. 1.2 -> "1.2A".
func FormatAmps(a float64, decimals int) string {
	return fmt.Sprintf("%.*fA", decimals, a)
}

// Voltage builds the idle layout: a title (or the race banner when one is
// set), a separator, one block per sensor and a clock at the bottom.
func Voltage(readings []sensor.Reading, banner string, now time.Time, cfg *config.Config, b image.Rectangle) Frame {
	l := cfg.Layout
	f := Frame{Mode: ModeVoltage}

	title := banner
	if title == "" {
		title = cfg.Messages.Title
	}
	f.add(title, 5, l.TitleY, b)
	f.Rules = append(f.Rules, l.SeparatorY)

	y := l.ContentStartY
	if len(readings) == 0 {
		f.add(cfg.Messages.NoData, 5, y, b)
		f.add(cfg.Messages.NoDataSub, 5, y+l.LineHeight, b)
	}
	for _, r := range readings {
		// Keep clear of the clock row at the bottom.
		if y > b.Dy()-20 {
			break
		}
		f.add(fmt.Sprintf("%s: %s", r.Sensor, FormatVolts(r.Volts(), l.VoltageDecimals)), 5, y, b)
		y += l.LineHeight
		if l.ShowCurrent && r.HasCurrent {
			f.add(fmt.Sprintf("  I: %s", FormatAmps(r.Amps(), l.CurrentDecimals)), 5, y, b)
			y += l.LineHeight
		}
		y += l.SensorGap
	}

	if l.ShowTimestamp {
		f.add(now.Format("15:04:05"), 5, b.Dy()-l.TimestampOffset, b)
	}
	return f
}

// Standings builds the in-race layout: status banner, separator, and the
// top four pilots by race time at a tighter pitch.
func Standings(snap race.Snapshot, cfg *config.Config, b image.Rectangle) Frame {
	l := cfg.Layout
	f := Frame{Mode: ModeStandings}

	banner := snap.Status.Banner()
	if banner == "" {
		banner = "Race Active"
	}
	f.add(banner, 5, l.TitleY, b)
	f.Rules = append(f.Rules, 13)

	y := 16
	if len(snap.Standings) == 0 {
		f.add("Waiting for", 5, y, b)
		f.add("race data...", 5, y+l.StandingsPitch, b)
		return f
	}
	for i, s := range snap.Standings {
		if i >= 4 {
			break
		}
		row := fmt.Sprintf("%d.%s %s", s.Position, race.ShortCallsign(s.Callsign), race.ShortLapTime(s.FastestLap))
		f.add(row, 5, y, b)
		y += l.StandingsPitch
	}
	return f
}

// LapNotice builds the lap-completed layout shown for a few seconds after
// a lap is recorded.
func LapNotice(lap race.Lap, cfg *config.Config, b image.Rectangle) Frame {
	l := cfg.Layout
	f := Frame{Mode: ModeLap}

	f.add("LAP COMPLETED", 5, l.TitleY, b)
	f.Rules = append(f.Rules, 13)

	y := 18
	f.add(fmt.Sprintf("Pilot: %s", lap.Pilot), 5, y, b)
	y += l.LineHeight
	f.add(fmt.Sprintf("Lap: %d", lap.Number), 5, y, b)
	y += l.LineHeight
	f.add(fmt.Sprintf("Time: %s", lap.Time), 5, y, b)
	y += l.LineHeight
	if lap.Position > 0 {
		f.add(fmt.Sprintf("Position: %d", lap.Position), 5, y, b)
	}
	return f
}

// BurnIn builds the minimal layout used while burn-in protection is active:
// the primary voltage and a short clock. The caller relocates the frame by
// setting Offset to a pseudo-random vector inside the safe margin.
func BurnIn(readings []sensor.Reading, now time.Time, cfg *config.Config, b image.Rectangle) Frame {
	f := Frame{Mode: ModeBurnIn}

	text := "No Data"
	if len(readings) > 0 {
		text = FormatVolts(readings[0].Volts(), 1)
	}
	f.add(text, 0, 0, b)
	f.add(now.Format("15:04"), 0, 16, b)
	return f
}
