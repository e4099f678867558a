// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termview implements a display.Drawer that renders the monochrome
// OLED framebuffer to the terminal (stdout) using ANSI color codes.
//
// Useful for working on layouts while the real panel is still in the mail.
package termview

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	W       int
	H       int
	Palette *ansi256.Palette
}

// Dev is an OLED panel emulator that outputs to the console, one colored
// block per pixel.
type Dev struct {
	w       io.Writer
	bounds  image.Rectangle
	palette ansi256.Palette

	pixels []byte
	buf    bytes.Buffer
	homed  bool
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	return &Dev{
		w:       colorable.NewColorableStdout(),
		bounds:  image.Rect(0, 0, opts.W, opts.H),
		palette: *p,
		pixels:  make([]byte, opts.W*opts.H),
	}
}

func (d *Dev) String() string {
	return "TermView"
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the shell is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.bounds)
	w := d.bounds.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			r16, g16, b16, _ := src.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y).RGBA()
			on := byte(0)
			// Same threshold as the 1-bit color model.
			if (r16+g16+b16)/3 >= 0x8000 {
				on = 1
			}
			d.pixels[y*w+x] = on
		}
	}
	return d.refresh()
}

var (
	lit   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	unlit = color.NRGBA{R: 10, G: 10, B: 10, A: 255}
)

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per
	// call.
	d.buf.Reset()
	if !d.homed {
		_, _ = d.buf.WriteString("\033[2J")
		d.homed = true
	}
	_, _ = d.buf.WriteString("\033[H\033[0m")
	w := d.bounds.Dx()
	for y := 0; y < d.bounds.Dy(); y++ {
		for x := 0; x < w; x++ {
			c := unlit
			if d.pixels[y*w+x] != 0 {
				c = lit
			}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
