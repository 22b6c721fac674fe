// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"fmt"

	"periph.io/x/wioterminal/samd51"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lis3dh"
)

// lis3dhID is the WHO_AM_I value of the LIS3DH.
const lis3dhID = 0x33

// Init binds s as the internal I²C host at AccelFrequency, checks that the
// LIS3DH answers at AccelAddress and configures it for 400 Hz high resolution
// sampling. s is SERCOM4 on the board.
//
// A device that does not acknowledge or does not identify as a LIS3DH is
// reported as ErrInit; s is then released and the pins returned to a, so Init
// can be retried.
func (a *Accelerometer) Init(s *samd51.Sercom, c *samd51.Clocks) (*Accel, error) {
	bus, err := samd51.NewI2C(s, c, samd51.I2CPads{SDA: a.SDA, SCL: a.SCL}, AccelFrequency)
	if err != nil {
		return nil, err
	}
	if err := identifyLIS3DH(bus); err != nil {
		if pads, e := bus.Unbind(); e == nil {
			a.SDA, a.SCL = pads.SDA, pads.SCL
		}
		return nil, err
	}
	dev := lis3dh.New(bus)
	dev.Address = AccelAddress
	dev.Configure()
	return &Accel{bus: bus, dev: dev, rng: dev.ReadRange()}, nil
}

func identifyLIS3DH(bus *samd51.I2C) error {
	var id [1]byte
	if err := bus.Tx(AccelAddress, []byte{lis3dh.WHO_AM_I}, id[:]); err != nil {
		return fmt.Errorf("%w: accelerometer: %w", ErrInit, err)
	}
	if id[0] != lis3dhID {
		return fmt.Errorf("%w: accelerometer: WHO_AM_I is %#02x, want %#02x", ErrInit, id[0], lis3dhID)
	}
	return nil
}

// Accel is the on-board LIS3DH accelerometer.
//
// Accel implements drivers.Sensor.
type Accel struct {
	bus *samd51.I2C
	dev lis3dh.Device
	rng lis3dh.Range

	x, y, z int32
}

func (a *Accel) String() string {
	return fmt.Sprintf("LIS3DH{%s, %#02x}", a.bus, AccelAddress)
}

// Bus returns the I²C host the sensor is on.
func (a *Accel) Bus() *samd51.I2C {
	return a.bus
}

// Range returns the full scale range read back after configuration.
func (a *Accel) Range() lis3dh.Range {
	return a.rng
}

// ReadRaw reads the three axes as left-justified 16 bits samples.
func (a *Accel) ReadRaw() (x, y, z int16, err error) {
	var b [6]byte
	// The MSB of the register address auto-increments it.
	if err := a.bus.Tx(AccelAddress, []byte{lis3dh.REG_OUT_X_L | 0x80}, b[:]); err != nil {
		return 0, 0, 0, err
	}
	x = int16(uint16(b[1])<<8 | uint16(b[0]))
	y = int16(uint16(b[3])<<8 | uint16(b[2]))
	z = int16(uint16(b[5])<<8 | uint16(b[4]))
	return x, y, z, nil
}

// Update implements drivers.Sensor.
func (a *Accel) Update(which drivers.Measurement) error {
	if which&drivers.Acceleration == 0 {
		return nil
	}
	x, y, z, err := a.ReadRaw()
	if err != nil {
		return err
	}
	div := int64(countsPerG(a.rng))
	a.x = int32(int64(x) * 1000000 / div)
	a.y = int32(int64(y) * 1000000 / div)
	a.z = int32(int64(z) * 1000000 / div)
	return nil
}

// Acceleration returns the acceleration measured by the last Update, in µg.
func (a *Accel) Acceleration() (x, y, z int32) {
	return a.x, a.y, a.z
}

// countsPerG returns the raw value of 1 g at range r.
func countsPerG(r lis3dh.Range) int32 {
	switch r {
	case lis3dh.RANGE_16_G:
		return 1365
	case lis3dh.RANGE_8_G:
		return 4096
	case lis3dh.RANGE_4_G:
		return 8190
	default:
		return 16380
	}
}

var _ drivers.Sensor = &Accel{}
