// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

// UARTPads are the pins of an asynchronous USART. TX must be on PAD0 (TXPO
// 0); RX can be on any other pad.
type UARTPads struct {
	TX *Pin
	RX *Pin
}

// UART is a SERCOM bound as an asynchronous USART, 8N1, 16x oversampling.
//
// UART implements conn.Conn, io.Reader and io.Writer.
type UART struct {
	s  *Sercom
	tx *Alt
	rx *Alt

	ref  physic.Frequency
	baud physic.Frequency
	reg  uint16
	rxpo uint8

	c conn.Conn // nil when the SERCOM is not wired
}

// NewUART binds s as a USART on pads at baud.
//
// The rate is used as given. The arithmetic baud generator accepts
// ref/(16*65536) < baud <= ref/16; anything else is rejected with ErrConfig.
func NewUART(s *Sercom, c *Clocks, pads UARTPads, baud physic.Frequency) (*UART, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	tx, err := sercomRoute(pads.TX, s, "TX")
	if err != nil {
		return nil, err
	}
	rx, err := sercomRoute(pads.RX, s, "RX")
	if err != nil {
		return nil, err
	}
	if tx.pad != 0 {
		return nil, fmt.Errorf("%w: TX must be on PAD0, %s is PAD%d", ErrPad, pads.TX, tx.pad)
	}
	if err := distinct(tx, rx); err != nil {
		return nil, err
	}
	ref, err := c.Enable(s.CoreChannel(), c.Gclk0())
	if err != nil {
		return nil, err
	}
	reg, err := baudRegister(ref, baud)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, s, err)
	}
	h := &UART{s: s, ref: ref, baud: baud, reg: reg, rxpo: uint8(rx.pad)}
	if s.uart != nil {
		if h.c, err = s.uart.Connect(baud, uart.One, uart.NoParity, uart.NoFlow, 8); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, s, err)
		}
	}
	alts, err := commit(tx, rx)
	if err != nil {
		return nil, err
	}
	h.tx, h.rx = alts[0], alts[1]
	s.bind("USART")
	logf("samd51: %s USART %s (BAUD=%d)", s, baud, reg)
	return h, nil
}

// baudRegister returns BAUD = 65536 * (1 - 16*baud/ref).
func baudRegister(ref, baud physic.Frequency) (uint16, error) {
	if baud < physic.Hertz || ref < physic.Hertz {
		return 0, fmt.Errorf("invalid baud rate %s", baud)
	}
	// Whole hertz keep the product within int64.
	x := 16 * 65536 * int64(baud/physic.Hertz) / int64(ref/physic.Hertz)
	if x < 1 || x > 65536 {
		return 0, fmt.Errorf("baud rate %s is out of range for a %s reference", baud, ref)
	}
	return uint16(65536 - x), nil
}

func (h *UART) String() string {
	return h.s.String()
}

// Baud returns the configured rate.
func (h *UART) Baud() physic.Frequency {
	return h.baud
}

// Register returns the BAUD register value.
func (h *UART) Register() uint16 {
	return h.reg
}

// Duplex implements conn.Conn.
func (h *UART) Duplex() conn.Duplex {
	return conn.Full
}

// Tx implements conn.Conn. It writes w then reads len(r) bytes.
func (h *UART) Tx(w, r []byte) error {
	if h.c == nil {
		return fmt.Errorf("%w: %s is not wired", ErrTransfer, h.s)
	}
	if err := h.c.Tx(w, r); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransfer, h.s, err)
	}
	return nil
}

// Write implements io.Writer.
func (h *UART) Write(b []byte) (int, error) {
	if err := h.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Read implements io.Reader.
//
// It returns what the wire has available when it implements io.Reader, and
// blocks for len(b) bytes otherwise.
func (h *UART) Read(b []byte) (int, error) {
	if r, ok := h.c.(io.Reader); ok {
		n, err := r.Read(b)
		if err != nil && err != io.EOF {
			err = fmt.Errorf("%w: %s: %w", ErrTransfer, h.s, err)
		}
		return n, err
	}
	if err := h.Tx(nil, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

var (
	_ conn.Conn     = &UART{}
	_ io.ReadWriter = &UART{}
)
