// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package frame

import (
	"image"
	"image/draw"
	"log"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/rhtools/oleddisplay/config"
)

// Renderer rasterizes frames into the vertical-LSB buffer the SSD1306 and
// SH1106 controllers expect. It is not safe for concurrent use; the display
// worker is its single owner.
type Renderer struct {
	face   font.Face
	ascent int
}

// NewRenderer loads the configured TTF face, falling back to the builtin
// 7x13 bitmap face when the font file is missing or unreadable.
func NewRenderer(cfg config.FontConfig) *Renderer {
	face := loadFace(cfg)
	return &Renderer{
		face:   face,
		ascent: face.Metrics().Ascent.Ceil(),
	}
}

func loadFace(cfg config.FontConfig) font.Face {
	data, err := os.ReadFile(cfg.Path)
	if err != nil {
		log.Printf("frame: %s not readable, using builtin face: %v", cfg.Path, err)
		return basicfont.Face7x13
	}
	f, err := freetype.ParseFont(data)
	if err != nil {
		log.Printf("frame: parsing %s failed, using builtin face: %v", cfg.Path, err)
		return basicfont.Face7x13
	}
	size := cfg.Size
	if size <= 0 {
		size = 12
	}
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// Render draws f into a fresh 1-bit image of the given bounds. Line
// positions are interpreted as the top-left corner of the text, offset by
// the frame's burn-in vector. Content outside the bounds is dropped.
func (r *Renderer) Render(f Frame, bounds image.Rectangle) *image1bit.VerticalLSB {
	w := bounds.Dx()
	h := bounds.Dy()

	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGB(1, 1, 1)
	dc.SetFontFace(r.face)
	dc.SetLineWidth(1)

	for _, rule := range f.Rules {
		y := rule + f.Offset.Y
		if y < 0 || y >= h {
			continue
		}
		// +0.5 centers the stroke on the pixel row.
		dc.DrawLine(0, float64(y)+0.5, float64(w), float64(y)+0.5)
		dc.Stroke()
	}

	for _, ln := range f.Lines {
		x := ln.At.X + f.Offset.X
		y := ln.At.Y + f.Offset.Y
		if y < 0 || y >= h {
			continue
		}
		dc.DrawString(ln.Text, float64(x), float64(y+r.ascent))
	}

	img := image1bit.NewVerticalLSB(bounds)
	draw.Draw(img, bounds, dc.Image(), image.Point{}, draw.Src)
	return img
}
