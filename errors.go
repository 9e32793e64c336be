// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahtx0

import (
	"strconv"
)

// TransportError wraps a bus level failure: no acknowledgment from the
// device, a bus timeout or a short transfer. The driver never retries
// the failed transaction. Unwrap exposes the underlying bus error.
type TransportError struct {
	// Op is the protocol step that failed: "reset", "calibrate",
	// "trigger", "status" or "read".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "ahtx0: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FramingError reports a status-and-data buffer whose length is not
// exactly 6 bytes. It indicates a broken transport contract, not a
// recoverable sensor condition.
type FramingError struct {
	Len int
}

func (e *FramingError) Error() string {
	return "ahtx0: invalid frame length " + strconv.Itoa(e.Len) + ", need " + strconv.Itoa(frameLen)
}

// CalibrationError means the device did not report loaded factory
// calibration after the calibration request was repeated, or returned a
// measurement frame with the calibration flag cleared. Power cycle the
// sensor, then retry Init.
type CalibrationError struct{}

func (e *CalibrationError) Error() string {
	return "ahtx0: device is not calibrated"
}

// StateError reports an operation attempted in a session state that does
// not allow it, for example Measure while a measurement is already in
// flight. The session state is left unchanged.
type StateError struct {
	// Op is the rejected method name.
	Op string
	// State is the session state that rejected it: "uninitialized",
	// "idle" or "measuring".
	State string
}

func (e *StateError) Error() string {
	switch e.State {
	case "uninitialized":
		return "ahtx0: " + e.Op + ": not initialized"
	case "measuring":
		return "ahtx0: " + e.Op + ": measurement already in progress"
	}
	return "ahtx0: " + e.Op + ": invalid in state " + e.State
}

// TimeoutError reports a busy flag that never cleared within the bounded
// number of status polls. The measurement was abandoned, the session is
// idle again and the previous cached reading, if any, is untouched.
type TimeoutError struct {
	// Polls is the number of status reads performed before giving up.
	Polls int
}

func (e *TimeoutError) Error() string {
	return "ahtx0: sensor still busy after " + strconv.Itoa(e.Polls) + " status polls"
}

// NotReadyError is returned by Temperature and Humidity before the first
// successful measurement, and by Collect while the sensor is still
// converting.
type NotReadyError struct {
	// Op is the method that had nothing to serve.
	Op string
}

func (e *NotReadyError) Error() string {
	return "ahtx0: " + e.Op + ": no measurement ready"
}

// DataCorruptionError reports an AHT20 frame whose trailing CRC byte does
// not match the frame content.
type DataCorruptionError struct{}

func (e *DataCorruptionError) Error() string {
	return "ahtx0: frame CRC mismatch"
}
