// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ahtx0 reads an AHT10 or AHT20 sensor and prints the temperature and
// relative humidity.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sensorkit/ahtx0"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use (default: the first available)")
	model := ahtx0.AHT20
	flag.Var(&model, "model", "sensor generation, AHT10 or AHT20")
	every := flag.Duration("every", 0, "keep reading at this interval (0 reads once)")
	nocrc := flag.Bool("nocrc", false, "skip CRC validation of AHT20 frames")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, use -help")
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
	opts.ValidateCRC = model == ahtx0.AHT20 && !*nocrc
	d, err := ahtx0.NewI2C(b, &opts)
	if err != nil {
		return err
	}

	for {
		e := physic.Env{}
		if err := d.Sense(&e); err != nil {
			return err
		}
		fmt.Printf("%8s %9s\n", e.Temperature, e.Humidity)
		if *every == 0 {
			return nil
		}
		time.Sleep(*every)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ahtx0: %s.\n", err)
		os.Exit(1)
	}
}
