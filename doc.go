// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oleddisplay shows battery voltage and live race data from a
// RotorHazard race server on a small I2C OLED display (SSD1306/SH1106,
// 128x64).
//
// The race server loads the plugin and calls Startup, Shutdown and the
// update handlers; a single background worker owns the display and
// refreshes it every couple of seconds. See the monitor package for the
// refresh loop and the install package for the environment checks run by
// cmd/oledinstall.
package oleddisplay
