// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout renders environmental readings as small images.
//
// Card draws an anti-aliased card with the Go regular font; it suits PNG
// output, web dashboards and grayscale panels. Compact draws plain
// fixed-width text without anti-aliasing so the result survives 1-bit
// displays like small OLEDs and e-paper.
package readout

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/physic"
)

// CardOpts represents the options available for Card.
type CardOpts struct {
	// X, Y is the canvas size in pixels. Defaults to 200x96.
	X int
	Y int
	// Title is drawn in the top left corner, typically the sensor name.
	// Empty leaves it out.
	Title string
}

// Card renders e as a rounded card, temperature above relative humidity.
// Passing nil opts selects the defaults.
func Card(e physic.Env, opts *CardOpts) (image.Image, error) {
	o := CardOpts{X: 200, Y: 96}
	if opts != nil {
		o = *opts
		if o.X <= 0 {
			o.X = 200
		}
		if o.Y <= 0 {
			o.Y = 96
		}
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("readout: %w", err)
	}

	w := float64(o.X)
	h := float64(o.Y)
	dc := gg.NewContext(o.X, o.Y)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	padding := h / 12
	dc.DrawRoundedRectangle(padding, padding, w-2*padding, h-2*padding, padding)
	dc.Stroke()

	if o.Title != "" {
		dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h * 0.14}))
		dc.DrawString(o.Title, padding*2, padding*2+h*0.14)
	}

	temp := fmt.Sprintf("%.1f°C", e.Temperature.Celsius())
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h * 0.30}))
	tw, th := dc.MeasureString(temp)
	dc.DrawString(temp, (w-tw)/2, h*0.42+th/2)

	hum := fmt.Sprintf("%.1f %%RH", float64(e.Humidity)/float64(physic.PercentRH))
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: h * 0.20}))
	hw, hh := dc.MeasureString(hum)
	dc.DrawString(hum, (w-hw)/2, h*0.74+hh/2)

	return dc.Image(), nil
}

// Compact renders e as two lines of 7x13 fixed-width text, black on
// white, sized to fit the text. No anti-aliasing, so every pixel is
// either full black or full white.
func Compact(e physic.Env) image.Image {
	f := basicfont.Face7x13
	lines := []string{
		fmt.Sprintf("%.1fC", e.Temperature.Celsius()),
		fmt.Sprintf("%.1f%%", float64(e.Humidity)/float64(physic.PercentRH)),
	}
	w := 0
	for _, s := range lines {
		if n := font.MeasureString(f, s).Ceil(); n > w {
			w = n
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w+4, 2*f.Height+4))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: f,
	}
	for i, s := range lines {
		d.Dot = fixed.P(2, 2+f.Ascent+i*f.Height)
		d.DrawString(s)
	}
	return img
}
