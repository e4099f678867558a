// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oledview runs the display worker standalone, outside the race server,
// for bench testing. It can drive the real panel or one of the previews,
// poll an INA260 battery monitor, and feed synthetic demo data.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/rhtools/oleddisplay"
	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/race"
	"github.com/rhtools/oleddisplay/sensor"
	"github.com/rhtools/oleddisplay/termview"
	"github.com/rhtools/oleddisplay/webview"
)

func mainImpl() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	preview := flag.String("preview", "oled", "output device: oled, term or web")
	webAddr := flag.String("web", "", "listen address for -preview web (overrides the config)")
	ina := flag.Bool("ina260", false, "poll an INA260 battery monitor on the I2C bus")
	demo := flag.Bool("demo", false, "feed synthetic sensor and race data")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	if *webAddr != "" {
		cfg.Preview.WebAddr = *webAddr
	}

	p := oleddisplay.New(cfg)
	switch *preview {
	case "oled":
		if err := p.Startup(); err != nil {
			return err
		}
	case "term":
		p.StartWith(termview.New(&termview.Opts{W: cfg.Display.Width, H: cfg.Display.Height}))
	case "web":
		m := webview.New(cfg.Display.Width, cfg.Display.Height)
		go func() {
			log.Printf("mirror listening on %s", cfg.Preview.WebAddr)
			if err := http.ListenAndServe(cfg.Preview.WebAddr, m); err != nil {
				log.Printf("mirror server: %v", err)
			}
		}()
		p.StartWith(m)
	default:
		return fmt.Errorf("unknown preview %q", *preview)
	}

	stop := make(chan struct{})
	if *ina {
		if _, err := host.Init(); err != nil {
			return err
		}
		b, err := i2creg.Open(cfg.Display.Bus)
		if err != nil {
			return err
		}
		defer b.Close()
		d, err := sensor.NewINA260(b, 0, "Battery")
		if err != nil {
			return err
		}
		go pollSource(p, d, cfg.UpdateInterval(), stop)
	}
	if *demo {
		go runDemo(p, stop)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	close(stop)
	return p.Shutdown()
}

// pollSource feeds sensor readings into the plugin state at the display's
// refresh cadence.
func pollSource(p *oleddisplay.Plugin, src sensor.Source, interval time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rs, err := src.Readings()
			if err != nil {
				log.Printf("sensor read: %v", err)
				continue
			}
			p.UpdateReadings(rs)
		}
	}
}

// runDemo simulates a slowly draining pack and a short race so every
// layout (voltage, standings, lap notice, burn-in) can be eyeballed.
func runDemo(p *oleddisplay.Plugin, stop chan struct{}) {
	voltage := 12600 * physic.MilliVolt
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	var elapsed time.Duration
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		elapsed += 2 * time.Second
		if voltage > 9*physic.Volt {
			voltage -= 8 * physic.MilliVolt
		}
		p.UpdateReadings([]sensor.Reading{{
			Sensor:     "Battery",
			Voltage:    voltage,
			Current:    1200 * physic.MilliAmpere,
			HasCurrent: true,
			Time:       time.Now(),
		}})

		// A 30 second race starting at the two minute mark.
		switch {
		case elapsed == 2*time.Minute:
			p.UpdateRace(race.Snapshot{Status: race.Staging})
		case elapsed == 2*time.Minute+10*time.Second:
			p.UpdateRace(race.Snapshot{
				Status: race.Racing,
				Standings: []race.Standing{
					{Position: 1, Callsign: "VIPER", FastestLap: "0:23.456"},
					{Position: 2, Callsign: "SKYWALKER", FastestLap: "0:24.102"},
				},
			})
			p.HandleLapRecorded(race.Lap{Pilot: "VIPER", Number: 1, Time: "0:23.456", Position: 1})
		case elapsed == 2*time.Minute+30*time.Second:
			p.UpdateRace(race.Snapshot{Status: race.Done})
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "oledview: %v\n", err)
		os.Exit(1)
	}
}
