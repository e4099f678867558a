// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config holds the YAML configuration for the OLED display plugin.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete plugin configuration.
type Config struct {
	Display  DisplayConfig  `yaml:"display"`
	Layout   LayoutConfig   `yaml:"layout"`
	Font     FontConfig     `yaml:"font"`
	Sensors  SensorConfig   `yaml:"sensors"`
	Messages MessagesConfig `yaml:"messages"`
	Preview  PreviewConfig  `yaml:"preview"`
}

// DisplayConfig contains panel geometry and refresh behavior.
type DisplayConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Bus    string `yaml:"bus"`
	// Addresses are probed in order; the first responding address is used
	// for the whole session.
	Addresses []uint16 `yaml:"addresses"`
	Rotated   bool     `yaml:"rotated"`

	UpdateIntervalSeconds int `yaml:"update_interval_seconds"`
	BurnInAfterSeconds    int `yaml:"burn_in_after_seconds"`
	BurnInMargin          int `yaml:"burn_in_margin"`
	LapNoticeSeconds      int `yaml:"lap_notice_seconds"`
}

// LayoutConfig contains the fixed text layout positions, in pixels.
type LayoutConfig struct {
	TitleY        int `yaml:"title_y"`
	SeparatorY    int `yaml:"separator_y"`
	ContentStartY int `yaml:"content_start_y"`
	LineHeight    int `yaml:"line_height"`
	SensorGap     int `yaml:"sensor_gap"`
	// StandingsPitch is the tighter line height used during races so four
	// pilots fit below the separator.
	StandingsPitch  int `yaml:"standings_pitch"`
	TimestampOffset int `yaml:"timestamp_offset"`

	ShowTimestamp   bool `yaml:"show_timestamp"`
	ShowCurrent     bool `yaml:"show_current"`
	VoltageDecimals int  `yaml:"voltage_decimals"`
	CurrentDecimals int  `yaml:"current_decimals"`
}

// FontConfig selects the TTF face used for rendering. If the file cannot be
// loaded the renderer falls back to a builtin bitmap face.
type FontConfig struct {
	Path string  `yaml:"path"`
	Size float64 `yaml:"size"`
}

// SensorConfig filters which host sensors are shown.
type SensorConfig struct {
	// Include restricts display to the named sensors. Empty means all.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	// MinVoltage filters out readings below this many volts.
	MinVoltage float64 `yaml:"min_voltage"`
}

// MessagesConfig contains the fixed display strings.
type MessagesConfig struct {
	Title     string `yaml:"title"`
	NoData    string `yaml:"no_data"`
	NoDataSub string `yaml:"no_data_sub"`
}

// PreviewConfig configures the optional development previews.
type PreviewConfig struct {
	// WebAddr is the listen address for the HTTP mirror.
	WebAddr string `yaml:"web_addr"`
}

// Default returns the stock configuration for a 128x64 panel at 0x3C/0x3D.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:                 128,
			Height:                64,
			Bus:                   "",
			Addresses:             []uint16{0x3C, 0x3D},
			UpdateIntervalSeconds: 2,
			BurnInAfterSeconds:    60,
			BurnInMargin:          10,
			LapNoticeSeconds:      5,
		},
		Layout: LayoutConfig{
			TitleY:          0,
			SeparatorY:      15,
			ContentStartY:   20,
			LineHeight:      12,
			SensorGap:       2,
			StandingsPitch:  10,
			TimestampOffset: 12,
			ShowTimestamp:   true,
			ShowCurrent:     true,
			VoltageDecimals: 2,
			CurrentDecimals: 1,
		},
		Font: FontConfig{
			Path: "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			Size: 12,
		},
		Sensors: SensorConfig{
			MinVoltage: 0.1,
		},
		Messages: MessagesConfig{
			Title:     "Voltage Monitor",
			NoData:    "No voltage sensors",
			NoDataSub: "available",
		},
		Preview: PreviewConfig{
			WebAddr: ":8081",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects geometries and intervals the display cannot honor.
func (c *Config) Validate() error {
	if c.Display.Width < 8 || c.Display.Width > 128 {
		return fmt.Errorf("invalid display width %d", c.Display.Width)
	}
	if c.Display.Height < 8 || c.Display.Height > 64 {
		return fmt.Errorf("invalid display height %d", c.Display.Height)
	}
	if len(c.Display.Addresses) == 0 {
		return fmt.Errorf("no I2C addresses configured")
	}
	if c.Display.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be positive")
	}
	if c.Display.BurnInMargin <= 0 {
		return fmt.Errorf("burn-in margin must be positive")
	}
	return nil
}

// UpdateInterval returns the refresh period of the display worker.
func (c *Config) UpdateInterval() time.Duration {
	return time.Duration(c.Display.UpdateIntervalSeconds) * time.Second
}

// BurnInAfter returns the idle time before burn-in protection engages.
func (c *Config) BurnInAfter() time.Duration {
	return time.Duration(c.Display.BurnInAfterSeconds) * time.Second
}

// LapNoticeHold returns how long a lap-completed notice stays on screen.
func (c *Config) LapNoticeHold() time.Duration {
	return time.Duration(c.Display.LapNoticeSeconds) * time.Second
}
