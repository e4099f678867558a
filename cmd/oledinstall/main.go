// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oledinstall verifies that the machine can drive the RotorHazard OLED
// display plugin: root privileges, I2C support, tooling and the display
// itself. It exits 0 when the environment is usable and 1 on the first
// fatal failure.
package main

import (
	"fmt"
	"os"

	"github.com/rhtools/oleddisplay/config"
	"github.com/rhtools/oleddisplay/install"
)

func main() {
	fmt.Println("RotorHazard OLED display environment check")
	s := &install.Sequence{Checks: install.DefaultChecks(config.Default())}
	if err := s.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "oledinstall: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("All checks passed.")
}
