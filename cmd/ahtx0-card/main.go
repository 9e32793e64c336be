// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ahtx0-card reads an AHT10 or AHT20 sensor and renders the reading as a
// small card image, to a PNG file with -png or to the terminal with
// -term.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/sensorkit/ahtx0"
	"github.com/sensorkit/ahtx0/readout"
	"github.com/sensorkit/ahtx0/screen2d"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use (default: the first available)")
	model := ahtx0.AHT20
	flag.Var(&model, "model", "sensor generation, AHT10 or AHT20")
	pngPath := flag.String("png", "", "write the card to this PNG file")
	term := flag.Bool("term", false, "draw the card in the terminal")
	x := flag.Int("x", 200, "card width in pixels")
	y := flag.Int("y", 96, "card height in pixels")
	every := flag.Duration("every", 0, "refresh at this interval (0 renders once)")
	flag.Parse()
	if *pngPath == "" && !*term {
		return errors.New("nothing to do, pass -png or -term")
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	b, err := i2creg.Open(*busName)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := ahtx0.DefaultOpts
	opts.Variant = model
	opts.ValidateCRC = model == ahtx0.AHT20
	d, err := ahtx0.NewI2C(b, &opts)
	if err != nil {
		return err
	}

	var scr *screen2d.Dev
	if *term {
		scr = screen2d.New(&screen2d.Opts{X: *x, Y: *y})
		defer scr.Halt()
	}

	for {
		e := physic.Env{}
		if err := d.Sense(&e); err != nil {
			return err
		}
		img, err := readout.Card(e, &readout.CardOpts{X: *x, Y: *y, Title: model.String()})
		if err != nil {
			return err
		}
		if *pngPath != "" {
			if err := gg.SavePNG(*pngPath, img); err != nil {
				return err
			}
		}
		if scr != nil {
			if err := scr.Draw(scr.Bounds(), img, image.Point{}); err != nil {
				return err
			}
		}
		if *every == 0 {
			return nil
		}
		time.Sleep(*every)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ahtx0-card: %s.\n", err)
		os.Exit(1)
	}
}
