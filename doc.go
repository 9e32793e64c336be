// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ahtx0 controls an Aosong AHT10 or AHT20 humidity and temperature
// sensor over I²C.
//
// Both generations speak the same protocol: a calibration request after
// power-on or reset, a trigger command per measurement, a busy flag to
// poll, and a 6 byte status-and-data frame packing two 20 bit ADC codes.
// They differ in the calibration opcode, in how the status byte is fetched
// and in the trailing CRC byte that only the AHT20 provides. Variant
// selects between the two.
//
// One measurement yields temperature and relative humidity decoded from
// the same frame, so Temperature and Humidity always describe the same
// instant. Both accessors serve the cached reading and never touch the
// bus.
//
// The driver performs no internal locking. The sensor is a single
// non-reentrant resource at a fixed address, and methods on Dev are not
// concurrency safe: callers that share a Dev across goroutines must
// serialize access themselves. SenseContinuous runs its own goroutine and
// must not be mixed with concurrent direct calls on the same Dev.
//
// # Datasheets
//
// AHT10: https://server4.eca.ir/eshop/AHT10/Aosong_AHT10_en_draft_0c.pdf
//
// AHT20: http://www.aosong.com/userfiles/files/media/Data%20Sheet%20AHT20.pdf
package ahtx0
