// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ahtx0

import (
	"periph.io/x/conn/v3/physic"
)

// frameLen is the fixed length of the sensor's status-and-data frame.
// The AHT20 appends a CRC as a 7th byte on the wire; the CRC is not part
// of the decoded frame.
const frameLen = 6

// frame is one decoded status-and-data frame.
//
// The wire layout packs two 20 bit ADC codes around the shared byte 3:
//
//	byte 0             status (bit 7 busy, bit 3 calibrated)
//	bytes 1..2         humidity code, high 16 bits
//	byte 3 high nibble humidity code, low 4 bits
//	byte 3 low nibble  temperature code, high 4 bits
//	bytes 4..5         temperature code, low 16 bits
type frame struct {
	busy        bool
	calibrated  bool
	rawHumidity uint32
	rawTemp     uint32
	humidity    physic.RelativeHumidity
	temperature physic.Temperature
}

// decodeFrame unpacks a raw 6 byte frame. It is a pure function, no I/O
// and no session state. A buffer of any other length is a transport
// contract violation and yields a FramingError.
func decodeFrame(buf []byte) (frame, error) {
	if len(buf) != frameLen {
		return frame{}, &FramingError{Len: len(buf)}
	}
	f := frame{
		busy:        buf[0]&bitBusy != 0,
		calibrated:  buf[0]&bitCalibrated != 0,
		rawHumidity: uint32(buf[1])<<12 | uint32(buf[2])<<4 | uint32(buf[3])>>4,
		rawTemp:     uint32(buf[3]&0x0F)<<16 | uint32(buf[4])<<8 | uint32(buf[5]),
	}
	// %RH = code / 2^20 * 100, °C = code / 2^20 * 200 - 50.
	humidityRH := float64(f.rawHumidity) / 1048576.0 * 100.0
	temperatureC := float64(f.rawTemp)/1048576.0*200.0 - 50.0
	f.humidity = physic.RelativeHumidity(humidityRH * float64(physic.PercentRH))
	f.temperature = physic.Temperature(temperatureC*float64(physic.Kelvin)) + physic.ZeroCelsius
	return f, nil
}

// crc8 computes the checksum the AHT20 appends to its frames.
// Polynomial 0x31 (x^8 + x^5 + x^4 + 1), initial value 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
