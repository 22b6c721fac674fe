// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// SPIPads are the pins of a SPI host. MISO may be nil for a write-only bus.
//
// SCK must be on PAD1 and MOSI on PAD0 or PAD3 (DOPO 0 or 2); MISO can be on
// any other pad.
type SPIPads struct {
	MISO *Pin
	MOSI *Pin
	SCK  *Pin
}

// SPI is a SERCOM bound as a SPI host.
//
// SPI implements spi.Conn.
type SPI struct {
	s    *Sercom
	miso *Alt
	mosi *Alt
	sck  *Alt

	ref  physic.Frequency
	freq physic.Frequency
	baud uint8
	mode spi.Mode
	dopo uint8
	dipo uint8

	c spi.Conn // nil when the SERCOM is not wired
}

// NewSPI binds s as a SPI host on pads.
//
// The SERCOM core runs from GCLK0. The bus runs at the highest rate
// ref/(2*(BAUD+1)) that does not exceed f. mode is used as is.
//
// The pins are moved into their SERCOM function only when every check passed.
func NewSPI(s *Sercom, c *Clocks, pads SPIPads, f physic.Frequency, mode spi.Mode) (*SPI, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	if mode&spi.HalfDuplex != 0 {
		return nil, fmt.Errorf("%w: %s: spi.HalfDuplex is not supported", ErrConfig, s)
	}
	if m := mode &^ (spi.NoCS | spi.LSBFirst); m < spi.Mode0 || m > spi.Mode3 {
		return nil, fmt.Errorf("%w: %s: unknown spi mode %s", ErrConfig, s, mode)
	}
	sck, err := sercomRoute(pads.SCK, s, "SCK")
	if err != nil {
		return nil, err
	}
	mosi, err := sercomRoute(pads.MOSI, s, "MOSI")
	if err != nil {
		return nil, err
	}
	miso := padRoute{}
	if pads.MISO != nil {
		if miso, err = sercomRoute(pads.MISO, s, "MISO"); err != nil {
			return nil, err
		}
	}
	if sck.pad != 1 {
		return nil, fmt.Errorf("%w: SCK must be on PAD1, %s is PAD%d", ErrPad, pads.SCK, sck.pad)
	}
	var dopo uint8
	switch mosi.pad {
	case 0:
		dopo = 0
	case 3:
		dopo = 2
	default:
		return nil, fmt.Errorf("%w: MOSI must be on PAD0 or PAD3, %s is PAD%d", ErrPad, pads.MOSI, mosi.pad)
	}
	if err := distinct(sck, mosi, miso); err != nil {
		return nil, err
	}

	ref, err := c.Enable(s.CoreChannel(), c.Gclk0())
	if err != nil {
		return nil, err
	}
	d, err := divisor(ref, f, 2, 2, 255)
	if err != nil {
		return nil, err
	}
	h := &SPI{
		s:    s,
		ref:  ref,
		freq: ref / physic.Frequency(d),
		baud: uint8(d/2 - 1),
		mode: mode,
		dopo: dopo,
		dipo: uint8(miso.pad),
	}
	if h.c, err = s.connectSPI(h.freq, mode); err != nil {
		return nil, err
	}
	alts, err := commit(miso, mosi, sck)
	if err != nil {
		return nil, err
	}
	h.miso, h.mosi, h.sck = alts[0], alts[1], alts[2]
	s.bind("SPI")
	logf("samd51: %s SPI %s (BAUD=%d) %s", s, h.freq, h.baud, mode)
	return h, nil
}

func (h *SPI) String() string {
	return h.s.String()
}

// Frequency returns the achieved bus clock.
func (h *SPI) Frequency() physic.Frequency {
	return h.freq
}

// Baud returns the BAUD register value.
func (h *SPI) Baud() uint8 {
	return h.baud
}

// Mode returns the mode the bus was bound with.
func (h *SPI) Mode() spi.Mode {
	return h.mode
}

// Pads returns the DOPO and DIPO settings of CTRLA.
func (h *SPI) Pads() (dopo, dipo uint8) {
	return h.dopo, h.dipo
}

// Unbind releases the SERCOM and returns the pads unconfigured, e.g. to retry
// after the device on the bus failed to answer. h is unusable afterwards.
//
// A later NewSPI on the same SERCOM reuses the host connection, which must
// then be at the same rate and mode.
func (h *SPI) Unbind() (SPIPads, error) {
	var pads SPIPads
	var err error
	if pads.SCK, err = h.sck.IntoFloatingInput(); err != nil {
		return SPIPads{}, err
	}
	if pads.MOSI, err = h.mosi.IntoFloatingInput(); err != nil {
		return pads, err
	}
	if h.miso != nil {
		if pads.MISO, err = h.miso.IntoFloatingInput(); err != nil {
			return pads, err
		}
	}
	h.s.unbind()
	return pads, nil
}

// Duplex implements conn.Conn.
func (h *SPI) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn.
func (h *SPI) Tx(w, r []byte) error {
	if err := verifyBuffers(w, r); err != nil {
		return err
	}
	if _, err := h.sck.line(); err != nil {
		return err
	}
	if len(r) != 0 && h.miso == nil {
		return fmt.Errorf("%w: %s has no MISO pad", ErrTransfer, h.s)
	}
	if h.c == nil {
		return fmt.Errorf("%w: %s is not wired", ErrTransfer, h.s)
	}
	if err := h.c.Tx(w, r); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransfer, h.s, err)
	}
	return nil
}

// TxPackets implements spi.Conn.
func (h *SPI) TxPackets(p []spi.Packet) error {
	for i := range p {
		if p[i].BitsPerWord != 0 && p[i].BitsPerWord != 8 {
			return fmt.Errorf("samd51: %s: only 8 bits per word is supported", h.s)
		}
		if err := verifyBuffers(p[i].W, p[i].R); err != nil {
			return err
		}
	}
	if _, err := h.sck.line(); err != nil {
		return err
	}
	if h.c == nil {
		return fmt.Errorf("%w: %s is not wired", ErrTransfer, h.s)
	}
	if err := h.c.TxPackets(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransfer, h.s, err)
	}
	return nil
}

// Transfer implements drivers.SPI.
func (h *SPI) Transfer(b byte) (byte, error) {
	w := [1]byte{b}
	var r [1]byte
	err := h.Tx(w[:], r[:])
	return r[0], err
}

func verifyBuffers(w, r []byte) error {
	if len(w) != 0 && len(r) != 0 && len(w) != len(r) {
		return errors.New("samd51: both buffers must have the same size")
	}
	return nil
}

var (
	_ spi.Conn    = &SPI{}
	_ drivers.SPI = &SPI{}
)
