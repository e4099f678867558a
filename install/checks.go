// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package install

import (
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strings"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/frame"
	"github.com/rhtools/oleddisplay/oled"
)

// DefaultChecks is the standard installation sequence. The fatal checks
// come first; a missing display is only a warning since it may simply not
// be wired up yet.
func DefaultChecks(cfg *config.Config) []Check {
	return []Check{
		{
			Name:     "root privileges",
			Severity: Fatal,
			Run:      checkRoot,
			Hint:     "re-run with sudo",
		},
		{
			Name:     "Raspberry Pi platform",
			Severity: Warning,
			Run:      checkPlatform,
		},
		{
			Name:     "I2C device node",
			Severity: Fatal,
			Run:      checkI2CNode,
			Remedy:   remedyModprobe,
			Hint:     "enable I2C with raspi-config and reboot",
		},
		{
			Name:     "i2cdetect available",
			Severity: Fatal,
			Run:      checkI2CTools,
			Remedy:   remedyInstallTools,
			Hint:     "install the i2c-tools package",
		},
		{
			Name:     "display detected",
			Severity: Warning,
			Run:      func() error { return checkDisplay(cfg, false) },
			Hint:     "check wiring: VCC->3.3V, GND->GND, SDA->GPIO2, SCL->GPIO3",
		},
		{
			Name:     "display smoke test",
			Severity: Warning,
			Run:      func() error { return checkDisplay(cfg, true) },
		},
		{
			Name:     "RotorHazard server running",
			Severity: Warning,
			Run:      checkServer,
			Hint:     "the plugin starts with the server; this is informational",
		},
	}
}

func checkRoot() error {
	if os.Geteuid() != 0 {
		return errors.New("not running as root")
	}
	return nil
}

func checkPlatform() error {
	model, err := os.ReadFile("/proc/device-tree/model")
	if err != nil {
		return fmt.Errorf("cannot identify platform: %w", err)
	}
	if !strings.Contains(string(model), "Raspberry Pi") {
		return fmt.Errorf("unexpected platform %q", strings.TrimRight(string(model), "\x00"))
	}
	return nil
}

func checkI2CNode() error {
	if _, err := os.Stat("/dev/i2c-1"); err != nil {
		return fmt.Errorf("/dev/i2c-1: %w", err)
	}
	return nil
}

func remedyModprobe() error {
	return exec.Command("modprobe", "i2c-dev").Run()
}

func checkI2CTools() error {
	_, err := exec.LookPath("i2cdetect")
	return err
}

func remedyInstallTools() error {
	return exec.Command("apt-get", "install", "-y", "i2c-tools").Run()
}

// checkDisplay probes the configured addresses. With smoke set it also
// initializes the panel, draws the startup screen and powers it back down.
func checkDisplay(cfg *config.Config, smoke bool) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("initializing host drivers: %w", err)
	}
	b, err := i2creg.Open(cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("opening I2C bus: %w", err)
	}
	defer b.Close()

	if !smoke {
		_, err := oled.Probe(b, cfg.Display.Addresses)
		return err
	}

	dev, err := oled.Open(b, cfg.Display)
	if err != nil {
		return err
	}
	splash := frame.Frame{
		Lines: []frame.Line{
			{Text: "RotorHazard", At: image.Point{X: 5, Y: 4}},
			{Text: "Voltage Monitor", At: image.Point{X: 5, Y: 22}},
			{Text: "Initializing...", At: image.Point{X: 5, Y: 40}},
		},
	}
	r := frame.NewRenderer(cfg.Font)
	if err := dev.Draw(dev.Bounds(), r.Render(splash, dev.Bounds()), image.Point{}); err != nil {
		return fmt.Errorf("drawing test frame: %w", err)
	}
	return dev.Halt()
}

func checkServer() error {
	if err := exec.Command("pgrep", "-f", "rotorhazard").Run(); err != nil {
		return errors.New("no rotorhazard process found")
	}
	return nil
}
