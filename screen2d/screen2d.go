// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a small 2D display.Drawer that outputs to
// terminal (stdout) using ANSI color codes, one block glyph per pixel and
// one line per pixel row.
//
// Useful to check what a readout card will look like before the OLED or
// e-paper panel comes by mail.
package screen2d

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// Opts represents the options available for this display.
type Opts struct {
	X       int
	Y       int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is a small pixel panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	bounds  image.Rectangle
	palette ansi256.Palette
	rewind  string

	pixels []byte
	drawn  bool
	buf    bytes.Buffer
}

// New returns a Dev that displays at the console.
//
// Permits to do local testing of display output. Repeated draws overwrite
// the previous frame in place.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:       colorable.NewColorableStdout(),
		bounds:  image.Rectangle{Max: image.Point{X: opts.X, Y: opts.Y}},
		palette: *p,
		rewind:  fmt.Sprintf("\033[%dA", opts.Y),
		pixels:  make([]byte, 3*opts.X*opts.Y),
	}
	return d
}

func (d *Dev) String() string {
	return "Screen2D"
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the shell prompt is not colored.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m"))
	if err != nil {
		return err
	}
	return nil
}

// Write accepts one full frame of raw RGB pixels and writes it to the
// console.
func (d *Dev) Write(pixels []byte) (int, error) {
	if len(pixels) != len(d.pixels) {
		return 0, errors.New("invalid RGB frame length")
	}
	copy(d.pixels, pixels)
	return d.refresh()
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.bounds
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	srcR := src.Bounds()
	srcR.Min = srcR.Min.Add(sp)
	if dX := r.Dx(); dX < srcR.Dx() {
		srcR.Max.X = srcR.Min.X + dX
	}
	if dY := r.Dy(); dY < srcR.Dy() {
		srcR.Max.Y = srcR.Min.Y + dY
	}
	deltaX := r.Min.X - srcR.Min.X
	deltaY := r.Min.Y - srcR.Min.Y
	w := d.bounds.Dx()
	for sY := srcR.Min.Y; sY < srcR.Max.Y; sY++ {
		base := 3 * ((sY+deltaY)*w + deltaX)
		for sX := srcR.Min.X; sX < srcR.Max.X; sX++ {
			r16, g16, b16, _ := src.At(sX, sY).RGBA()
			o := base + 3*sX
			d.pixels[o] = byte(r16 >> 8)
			d.pixels[o+1] = byte(g16 >> 8)
			d.pixels[o+2] = byte(b16 >> 8)
		}
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) refresh() (int, error) {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.drawn {
		_, _ = d.buf.WriteString(d.rewind)
	}
	w := d.bounds.Dx()
	for y := 0; y < d.bounds.Dy(); y++ {
		_, _ = d.buf.WriteString("\r\033[0m")
		for x := 0; x < w; x++ {
			o := 3 * (y*w + x)
			c := color.NRGBA{d.pixels[o], d.pixels[o+1], d.pixels[o+2], 255}
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	d.drawn = true
	_, err := d.buf.WriteTo(d.w)
	return len(d.pixels), err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
