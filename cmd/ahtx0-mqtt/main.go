// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ahtx0-mqtt periodically reads an AHT10 or AHT20 sensor and publishes
// the readings to an MQTT broker as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/sensorkit/ahtx0"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type LogPrintf func(format string, v ...interface{})

// reading is the JSON payload published on <topic>/env.
type reading struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityRH   float64 `json:"humidity_rh"`
	TS           int64   `json:"ts"`
}

// newMQ connects to a broker. The paho client keeps the connection alive
// and re-establishes it after a disconnect.
func newMQ(broker, user, pass string, debug LogPrintf) (mqtt.Client, error) {
	hostname, _ := os.Hostname()
	id := "ahtx0-" + hostname
	if debug != nil {
		debug("Configuring MQTT with client id %s for %s", id, broker)
	}
	mqtt.ERROR = log.New(os.Stderr, "", 0)
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s", broker))
	opts.ClientID = id
	opts.Username = user
	opts.Password = pass

	mqConn := mqtt.NewClient(opts)
	token := mqConn.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("timeout connecting to %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	log.Printf("MQTT connected")
	return mqConn, nil
}

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use (default: the first available)")
	model := ahtx0.AHT20
	flag.Var(&model, "model", "sensor generation, AHT10 or AHT20")
	broker := flag.String("mqtt", "localhost:1883", "host:port of the MQTT broker")
	user := flag.String("user", "", "MQTT username")
	pass := flag.String("pass", "", "MQTT password")
	topic := flag.String("topic", "sensors/ahtx0", "MQTT topic prefix")
	every := flag.Duration("every", time.Minute, "publish interval")
	retain := flag.Bool("retain", false, "publish with the retained flag set")
	debug := flag.Bool("debug", false, "print each published payload")
	flag.Parse()

	var logger LogPrintf
	if *debug {
		logger = log.Printf
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

	mq, err := newMQ(*broker, *user, *pass, logger)
	if err != nil {
		return err
	}
	defer mq.Disconnect(250)

	log.Printf("publishing %s readings to %s/env every %s", model, *topic, *every)
	for {
		e := physic.Env{}
		if err := d.Sense(&e); err != nil {
			// Transient bus or timeout errors: log and retry next tick.
			log.Printf("sense: %s", err)
		} else {
			r := reading{
				TemperatureC: e.Temperature.Celsius(),
				HumidityRH:   float64(e.Humidity) / float64(physic.PercentRH),
				TS:           time.Now().Unix(),
			}
			payload, _ := json.Marshal(&r)
			if logger != nil {
				logger("publish %s: %s", *topic+"/env", payload)
			}
			mq.Publish(*topic+"/env", 1, *retain, payload)
		}
		time.Sleep(*every)
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ahtx0-mqtt: %s.\n", err)
		os.Exit(1)
	}
}
