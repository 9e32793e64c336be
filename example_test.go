// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahtx0_test

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sensorkit/ahtx0"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

func Example() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer b.Close()

	// Open and calibrate an AHT20 with the default options.
	d, err := ahtx0.NewI2C(b, nil)
	if err != nil {
		log.Fatalf("failed to initialize AHT20: %v", err)
	}

	// Read temperature and humidity from the sensor.
	e := physic.Env{}
	if err := d.Sense(&e); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%8s %9s\n", e.Temperature, e.Humidity)
}

// Trigger and Collect split a measurement so the caller can do other work
// during the ~80ms conversion instead of sleeping in Measure.
func ExampleDev_Trigger() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()

	opts := ahtx0.DefaultOpts
	opts.Variant = ahtx0.AHT10
	opts.ValidateCRC = false
	d, err := ahtx0.NewI2C(b, &opts)
	if err != nil {
		log.Fatal(err)
	}

	if err := d.Trigger(); err != nil {
		log.Fatal(err)
	}
	for {
		err := d.Collect()
		var nr *ahtx0.NotReadyError
		if errors.As(err, &nr) {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err != nil {
			log.Fatal(err)
		}
		break
	}
	temp, err := d.Temperature()
	if err != nil {
		log.Fatal(err)
	}
	hum, err := d.Humidity()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%.2f°C %.1f%%RH\n", temp.Celsius(), float64(hum)/float64(physic.PercentRH))
}
