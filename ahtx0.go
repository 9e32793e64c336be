// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahtx0

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Addr is the 7 bit I²C address of the AHT10 and AHT20. It is not
// configurable in hardware.
const Addr uint16 = 0x38

const (
	cmdStatus         byte = 0x71 // AHT20 status request
	cmdTrigger        byte = 0xAC
	cmdSoftReset      byte = 0xBA
	cmdCalibrateAHT10 byte = 0xE1
	cmdCalibrateAHT20 byte = 0xBE

	bitBusy       byte = 1 << 7
	bitCalibrated byte = 1 << 3
)

// argsTrigger is the measurement trigger with its two fixed parameter
// bytes.
var argsTrigger = []byte{cmdTrigger, 0x33, 0x00}

// Variant selects the sensor generation.
type Variant int

const (
	// AHT10 is the original device: calibration opcode 0xE1, a plain one
	// byte status read, no CRC on the frame.
	AHT10 Variant = iota
	// AHT20 is the successor: calibration opcode 0xBE, status fetched
	// with the 0x71 command, a trailing CRC byte on every frame.
	AHT20
)

// variants holds the per generation protocol differences.
var variants = [...]struct {
	name      string
	calibrate []byte
	status    []byte // written before reading the status byte; nil for a plain read
	crc       bool
}{
	{"AHT10", []byte{cmdCalibrateAHT10, 0x08, 0x00}, nil, false},
	{"AHT20", []byte{cmdCalibrateAHT20, 0x08, 0x00}, []byte{cmdStatus}, true},
}

func (v Variant) String() string {
	if int(v) < 0 || int(v) >= len(variants) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variants[v].name
}

// Set implements flag.Value.
func (v *Variant) Set(s string) error {
	switch s {
	case "AHT10", "aht10":
		*v = AHT10
	case "AHT20", "aht20":
		*v = AHT20
	default:
		return fmt.Errorf("unknown variant %q, expected AHT10 or AHT20", s)
	}
	return nil
}

// sessionState tracks where the measurement cycle stands.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateIdle
	stateMeasuring
)

func (s sessionState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateIdle:
		return "idle"
	case stateMeasuring:
		return "measuring"
	}
	return "unknown"
}

// Opts holds the configuration options for the device.
type Opts struct {
	// Variant selects between the AHT10 and AHT20 command sets. The zero
	// value is AHT10.
	Variant Variant
	// SettleDelay is the wait after a soft reset before the device
	// accepts commands again. Defaults to 20ms.
	SettleDelay time.Duration
	// MeasureDelay is the wait after triggering a measurement before the
	// first status poll. The datasheet quotes the conversion at 80ms.
	MeasureDelay time.Duration
	// PollInterval is the wait between consecutive status polls.
	// Defaults to 10ms.
	PollInterval time.Duration
	// MaxPolls bounds the number of status reads per wait before the
	// driver gives up with a TimeoutError. Defaults to 15.
	MaxPolls int
	// ValidateCRC verifies the trailing CRC byte of every measurement
	// frame. Only the AHT20 sends one; enabling it on an AHT10 is a
	// configuration error.
	ValidateCRC bool
}

// DefaultOpts is the recommended configuration for an AHT20.
var DefaultOpts = Opts{
	Variant:      AHT20,
	SettleDelay:  20 * time.Millisecond,
	MeasureDelay: 80 * time.Millisecond,
	PollInterval: 10 * time.Millisecond,
	MaxPolls:     15,
	ValidateCRC:  true,
}

// Dev is a handle to an AHT10 or AHT20 sensor on an I²C bus.
//
// Methods on Dev are not concurrency safe; see the package documentation.
type Dev struct {
	d    *i2c.Dev
	opts Opts

	state      sessionState
	reading    frame
	hasReading bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New returns a session for an AHT10 or AHT20 on the given bus. It does
// not touch the device; call Init before measuring. Passing nil opts
// selects DefaultOpts.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if int(o.Variant) < 0 || int(o.Variant) >= len(variants) {
		return nil, fmt.Errorf("ahtx0: unknown variant %d", int(o.Variant))
	}
	if o.ValidateCRC && !variants[o.Variant].crc {
		return nil, fmt.Errorf("ahtx0: %s frames carry no CRC", o.Variant)
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultOpts.SettleDelay
	}
	if o.MeasureDelay <= 0 {
		o.MeasureDelay = DefaultOpts.MeasureDelay
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultOpts.PollInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultOpts.MaxPolls
	}
	return &Dev{
		d:     &i2c.Dev{Bus: b, Addr: Addr},
		opts:  o,
		state: stateUninitialized,
	}, nil
}

// NewI2C returns a device ready to measure: it opens the session and runs
// Init.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	d, err := New(b, opts)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s: %s", d.opts.Variant, d.d)
}

// Init resets the sensor, issues the calibration request and verifies the
// calibrated status flag. The request is repeated at most once; a flag
// that still reads clear yields a CalibrationError and the session stays
// uninitialized, so Init may be called again. On success the session is
// idle.
func (d *Dev) Init() error {
	if err := d.Reset(); err != nil {
		return err
	}
	ok, err := d.calibrate()
	if err != nil {
		return err
	}
	if !ok {
		if ok, err = d.calibrate(); err != nil {
			return err
		}
		if !ok {
			return &CalibrationError{}
		}
	}
	d.state = stateIdle
	return nil
}

// Reset performs a soft reset and waits for the device to settle. Any
// measurement in flight is abandoned and the session drops back to
// uninitialized; calibration must be reloaded with Init. The cached
// reading survives.
func (d *Dev) Reset() error {
	if err := d.tx("reset", []byte{cmdSoftReset}, nil); err != nil {
		return err
	}
	time.Sleep(d.opts.SettleDelay)
	d.state = stateUninitialized
	return nil
}

// Trigger starts a measurement cycle without waiting for the result. It
// fails with a StateError unless the session is idle. The conversion
// takes around 80ms; pick up the frame with Collect.
func (d *Dev) Trigger() error {
	return d.trigger("Trigger")
}

// Collect finishes a measurement started by Trigger. It probes the status
// byte once: while the sensor is still converting it returns a
// NotReadyError and the session keeps measuring, so Collect can be called
// again. Once the busy flag clears it reads the frame, caches the decoded
// reading and returns the session to idle.
func (d *Dev) Collect() error {
	if d.state != stateMeasuring {
		return &StateError{Op: "Collect", State: d.state.String()}
	}
	st, err := d.status()
	if err != nil {
		d.state = stateIdle
		return err
	}
	if st&bitBusy != 0 {
		return &NotReadyError{Op: "Collect"}
	}
	n := frameLen
	if d.opts.ValidateCRC {
		n++
	}
	buf := make([]byte, n)
	if err := d.tx("read", nil, buf); err != nil {
		d.state = stateIdle
		return err
	}
	if d.opts.ValidateCRC && crc8(buf[:frameLen]) != buf[frameLen] {
		d.state = stateIdle
		return &DataCorruptionError{}
	}
	f, err := decodeFrame(buf[:frameLen])
	if err != nil {
		d.state = stateIdle
		return err
	}
	if f.busy {
		// The frame's own status byte wins over the probe.
		return &NotReadyError{Op: "Collect"}
	}
	d.state = stateIdle
	if !f.calibrated {
		return &CalibrationError{}
	}
	d.reading = f
	d.hasReading = true
	return nil
}

// Measure runs one full measurement cycle: trigger, the conversion wait,
// then bounded status polling until the frame is ready. It fails with a
// StateError unless the session is idle. A busy flag that never clears
// within MaxPolls yields a TimeoutError, the session returns to idle and
// the previous cached reading, if any, is untouched.
func (d *Dev) Measure() error {
	if err := d.trigger("Measure"); err != nil {
		return err
	}
	time.Sleep(d.opts.MeasureDelay)
	for n := 1; ; n++ {
		err := d.Collect()
		if err == nil {
			return nil
		}
		if _, ok := err.(*NotReadyError); !ok {
			return err
		}
		if n >= d.opts.MaxPolls {
			d.state = stateIdle
			return &TimeoutError{Polls: n}
		}
		time.Sleep(d.opts.PollInterval)
	}
}

// Temperature returns the temperature of the most recent successful
// measurement. It performs no bus I/O and fails with a NotReadyError
// until a measurement has succeeded at least once.
func (d *Dev) Temperature() (physic.Temperature, error) {
	if !d.hasReading {
		return 0, &NotReadyError{Op: "Temperature"}
	}
	return d.reading.temperature, nil
}

// Humidity returns the relative humidity of the most recent successful
// measurement, decoded from the same frame as the temperature. It
// performs no bus I/O and fails with a NotReadyError until a measurement
// has succeeded at least once.
func (d *Dev) Humidity() (physic.RelativeHumidity, error) {
	if !d.hasReading {
		return 0, &NotReadyError{Op: "Humidity"}
	}
	return d.reading.humidity, nil
}

// Sense measures temperature and humidity and fills e with the result.
// An uninitialized session is initialized first. Implements
// physic.SenseEnv.
func (d *Dev) Sense(e *physic.Env) error {
	if d.state == stateUninitialized {
		if err := d.Init(); err != nil {
			return err
		}
	}
	if err := d.Measure(); err != nil {
		return err
	}
	e.Temperature = d.reading.temperature
	e.Humidity = d.reading.humidity
	e.Pressure = 0
	return nil
}

// SenseContinuous returns a channel of readings taken at the given
// interval until Halt is called. Failed cycles are skipped. The datasheet
// recommends an interval of at least 2s to keep self heating below
// 0.1°C. Implements physic.SenseEnv.
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan physic.Env, error) {
	if d.stop != nil {
		return nil, fmt.Errorf("ahtx0: already sensing continuously")
	}
	d.stop = make(chan struct{})
	ch := make(chan physic.Env, 16)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(ch)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-t.C:
				e := physic.Env{}
				if err := d.Sense(&e); err == nil && len(ch) < cap(ch) {
					ch <- e
				}
			}
		}
	}()
	return ch, nil
}

// Precision returns the resolution of the readings: 0.01°C and 0.024%RH.
// Implements physic.SenseEnv.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 10 * physic.MilliKelvin
	e.Pressure = 0
	e.Humidity = 240 * physic.MicroRH
}

// Halt stops a running SenseContinuous and waits for its goroutine to
// drain. The sensor itself has no power down command; it idles between
// triggers on its own. Implements conn.Resource.
func (d *Dev) Halt() error {
	if d.stop == nil {
		return nil
	}
	close(d.stop)
	d.wg.Wait()
	d.stop = nil
	return nil
}

func (d *Dev) trigger(op string) error {
	if d.state != stateIdle {
		return &StateError{Op: op, State: d.state.String()}
	}
	if err := d.tx("trigger", argsTrigger, nil); err != nil {
		return err
	}
	d.state = stateMeasuring
	return nil
}

// calibrate sends the variant's calibration request, waits out the busy
// flag and reports whether the device ended up calibrated.
func (d *Dev) calibrate() (bool, error) {
	if err := d.tx("calibrate", variants[d.opts.Variant].calibrate, nil); err != nil {
		return false, err
	}
	time.Sleep(d.opts.PollInterval)
	st, err := d.waitIdle()
	if err != nil {
		return false, err
	}
	return st&bitCalibrated != 0, nil
}

// status reads the sensor status byte.
func (d *Dev) status() (byte, error) {
	var buf [1]byte
	if err := d.tx("status", variants[d.opts.Variant].status, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// waitIdle polls the status byte until the busy flag clears, making at
// most MaxPolls attempts, and returns the final status byte.
func (d *Dev) waitIdle() (byte, error) {
	for n := 1; ; n++ {
		st, err := d.status()
		if err != nil {
			return 0, err
		}
		if st&bitBusy == 0 {
			return st, nil
		}
		if n >= d.opts.MaxPolls {
			return 0, &TimeoutError{Polls: n}
		}
		time.Sleep(d.opts.PollInterval)
	}
}

// tx runs one bus transaction and converts bus failures into a
// TransportError.
func (d *Dev) tx(op string, w, r []byte) error {
	if err := d.d.Tx(w, r); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
