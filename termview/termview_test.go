// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termview

import (
	"bytes"
	"image"
	"testing"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestDrawWritesAnsi(t *testing.T) {
	d := New(&Opts{W: 8, H: 4})
	var out bytes.Buffer
	d.w = &out

	img := image1bit.NewVerticalLSB(d.Bounds())
	img.SetBit(3, 1, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if d.pixels[1*8+3] != 1 {
		t.Error("lit pixel not recorded")
	}
	if d.pixels[0] != 0 {
		t.Error("unlit pixel recorded as lit")
	}
	if !bytes.Contains(out.Bytes(), []byte("\033[")) {
		t.Error("output contains no ANSI escapes")
	}
}

func TestHaltResetsColors(t *testing.T) {
	d := New(&Opts{W: 4, H: 2})
	var out bytes.Buffer
	d.w = &out
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out.Bytes(), []byte("\033[0m")) {
		t.Error("Halt did not reset terminal colors")
	}
}
