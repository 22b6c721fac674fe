// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

// I2CPads are the pins of an I²C host. SDA must be on PAD0 and SCL on PAD1.
type I2CPads struct {
	SDA *Pin
	SCL *Pin
}

// I2C is a SERCOM bound as an I²C host.
//
// I2C implements i2c.Bus and drivers.I2C.
type I2C struct {
	s   *Sercom
	sda *Alt
	scl *Alt

	ref  physic.Frequency
	freq physic.Frequency
	baud uint8

	bus i2c.Bus // nil when the SERCOM is not wired
}

// NewI2C binds s as an I²C host on pads.
//
// SCL runs at the highest rate ref/(10+2*BAUD) that does not exceed f; rise
// time is not accounted for.
func NewI2C(s *Sercom, c *Clocks, pads I2CPads, f physic.Frequency) (*I2C, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	sda, err := sercomRoute(pads.SDA, s, "SDA")
	if err != nil {
		return nil, err
	}
	scl, err := sercomRoute(pads.SCL, s, "SCL")
	if err != nil {
		return nil, err
	}
	if sda.pad != 0 || scl.pad != 1 {
		return nil, fmt.Errorf("%w: SDA must be on PAD0 and SCL on PAD1, got PAD%d and PAD%d", ErrPad, sda.pad, scl.pad)
	}
	ref, err := c.Enable(s.CoreChannel(), c.Gclk0())
	if err != nil {
		return nil, err
	}
	d, err := divisor(ref, f, 10, 2, 255)
	if err != nil {
		return nil, err
	}
	h := &I2C{
		s:    s,
		ref:  ref,
		freq: ref / physic.Frequency(d),
		baud: uint8((d - 10) / 2),
		bus:  s.i2c,
	}
	if h.bus != nil {
		if err := h.bus.SetSpeed(h.freq); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, s, err)
		}
	}
	alts, err := commit(sda, scl)
	if err != nil {
		return nil, err
	}
	h.sda, h.scl = alts[0], alts[1]
	s.bind("I2C")
	logf("samd51: %s I2C %s (BAUD=%d)", s, h.freq, h.baud)
	return h, nil
}

func (h *I2C) String() string {
	return h.s.String()
}

// Frequency returns the achieved SCL rate.
func (h *I2C) Frequency() physic.Frequency {
	return h.freq
}

// Baud returns the BAUD register value.
func (h *I2C) Baud() uint8 {
	return h.baud
}

// Unbind releases the SERCOM and returns the pads unconfigured, e.g. to retry
// after a device failed to acknowledge. h is unusable afterwards.
func (h *I2C) Unbind() (I2CPads, error) {
	var pads I2CPads
	var err error
	if pads.SCL, err = h.scl.IntoFloatingInput(); err != nil {
		return I2CPads{}, err
	}
	if pads.SDA, err = h.sda.IntoFloatingInput(); err != nil {
		return pads, err
	}
	h.s.unbind()
	return pads, nil
}

// Tx implements i2c.Bus.
func (h *I2C) Tx(addr uint16, w, r []byte) error {
	if _, err := h.scl.line(); err != nil {
		return err
	}
	if addr > 0x7F {
		return fmt.Errorf("%w: %s: 10 bit address %#x is not supported", ErrTransfer, h.s, addr)
	}
	if h.bus == nil {
		return fmt.Errorf("%w: %s is not wired", ErrTransfer, h.s)
	}
	if err := h.bus.Tx(addr, w, r); err != nil {
		return fmt.Errorf("%w: %s: %#x: %w", ErrTransfer, h.s, addr, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus.
//
// The rate is fixed when the bus is bound.
func (h *I2C) SetSpeed(f physic.Frequency) error {
	if f == h.freq {
		return nil
	}
	return fmt.Errorf("%w: %s runs at %s; bind again to change it", ErrConfig, h.s, h.freq)
}

var (
	_ i2c.Bus     = &I2C{}
	_ drivers.I2C = &I2C{}
)
