// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oleddisplay_test

import (
	"log"
	"time"

	"github.com/rhtools/oleddisplay"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
	"github.com/rhtools/oleddisplay/termview"

	"periph.io/x/conn/v3/physic"
)

// Example shows the calls a host makes over the plugin's lifetime. A real
// deployment calls Startup instead of StartWith to drive the I2C panel.
func Example() {
	p := oleddisplay.New(nil)
	p.StartWith(termview.New(&termview.Opts{W: 128, H: 64}))

	// The host forwards sensor and race data as it changes.
	p.UpdateReadings([]sensor.Reading{{
		Sensor:     "Battery",
		Voltage:    12340 * physic.MilliVolt,
		Current:    1200 * physic.MilliAmpere,
		HasCurrent: true,
		Time:       time.Now(),
	}})
	p.UpdateRace(race.Snapshot{Status: race.Racing, Standings: []race.Standing{
		{Position: 1, Callsign: "VIPER", FastestLap: "0:23.456"},
	}})
	p.HandleLapRecorded(race.Lap{Pilot: "VIPER", Number: 1, Time: "0:23.456", Position: 1})

	// On the host's shutdown event the display is cleared and released.
	if err := p.Shutdown(); err != nil {
		log.Fatal(err)
	}
}
