// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"
)

// testDev returns a Dev rendering into a buffer instead of stdout.
func testDev(x, y int) (*Dev, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	d := New(&Opts{X: x, Y: y})
	d.w = buf
	return d, buf
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

func TestBasic(t *testing.T) {
	d, _ := testDev(4, 2)
	if s := d.String(); s != "Screen2D" {
		t.Errorf("String()=%q", s)
	}
	if b := d.Bounds(); b != image.Rect(0, 0, 4, 2) {
		t.Errorf("Bounds()=%v", b)
	}
	if d.ColorModel() != color.NRGBAModel {
		t.Error("unexpected color model")
	}
}

func TestDraw(t *testing.T) {
	d, buf := testDev(4, 2)
	if err := d.Draw(d.Bounds(), solid(4, 2, color.NRGBA{R: 255, A: 255}), image.Point{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected one line per pixel row:\n%q", out)
	}
	if strings.HasPrefix(out, "\033[2A") {
		t.Error("first frame must not rewind")
	}
	if !strings.Contains(out, "\033[0m") {
		t.Error("missing attribute reset")
	}

	// The second frame rewinds over the first.
	buf.Reset()
	if err := d.Draw(d.Bounds(), solid(4, 2, color.NRGBA{G: 255, A: 255}), image.Point{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "\033[2A") {
		t.Errorf("expected rewind:\n%q", buf.String())
	}
}

func TestDrawOffset(t *testing.T) {
	d, _ := testDev(3, 2)
	// A single white pixel into the middle of the bottom row.
	if err := d.Draw(image.Rect(1, 1, 2, 2), solid(1, 1, color.NRGBA{255, 255, 255, 255}), image.Point{}); err != nil {
		t.Fatal(err)
	}
	o := 3 * (1*3 + 1)
	if d.pixels[o] != 255 || d.pixels[o+1] != 255 || d.pixels[o+2] != 255 {
		t.Errorf("pixel (1,1) not set: %v", d.pixels)
	}
	if d.pixels[0] != 0 {
		t.Errorf("pixel (0,0) clobbered: %v", d.pixels)
	}
}

func TestWrite(t *testing.T) {
	d, buf := testDev(2, 2)
	if _, err := d.Write(make([]byte, 5)); err == nil {
		t.Error("accepted a partial frame")
	}
	n, err := d.Write(make([]byte, 3*2*2))
	if err != nil {
		t.Fatal(err)
	}
	if n != 12 {
		t.Errorf("Write()=%d", n)
	}
	if buf.Len() == 0 {
		t.Error("nothing written to the console")
	}
}

func TestHalt(t *testing.T) {
	d, buf := testDev(1, 1)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\033[0m" {
		t.Errorf("Halt wrote %q", buf.String())
	}
}
