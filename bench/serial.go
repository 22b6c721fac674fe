// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bench

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/uart"
)

// Ports lists the serial devices present on the host.
func Ports() ([]string, error) {
	l, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	return l, nil
}

// SerialPort is a host serial device exposed as an uart.PortCloser.
//
// The device is opened on Connect.
type SerialPort struct {
	Device string

	// open defaults to serial.Open.
	open func(name string, mode *serial.Mode) (serial.Port, error)

	mu    sync.Mutex
	limit physic.Frequency
	c     *serialConn
}

func (s *SerialPort) String() string {
	return s.Device
}

// LimitSpeed implements uart.PortCloser.
func (s *SerialPort) LimitSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("bench: %s: invalid speed %s", s.Device, f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit = f
	return nil
}

// Connect implements uart.Port.
//
// Only uart.NoFlow is supported.
func (s *SerialPort) Connect(f physic.Frequency, stopBit uart.Stop, parity uart.Parity, flow uart.Flow, bits int) (conn.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil, fmt.Errorf("bench: %s: already connected", s.Device)
	}
	if s.limit != 0 && f > s.limit {
		f = s.limit
	}
	if flow != uart.NoFlow {
		return nil, fmt.Errorf("bench: %s: flow control %d not supported", s.Device, flow)
	}
	if bits < 5 || bits > 8 {
		return nil, fmt.Errorf("bench: %s: invalid data bits %d", s.Device, bits)
	}
	mode := &serial.Mode{BaudRate: int(f / physic.Hertz), DataBits: bits}
	var ok bool
	if mode.StopBits, ok = stopBits[stopBit]; !ok {
		return nil, fmt.Errorf("bench: %s: invalid stop bit %d", s.Device, stopBit)
	}
	if mode.Parity, ok = parities[parity]; !ok {
		return nil, fmt.Errorf("bench: %s: invalid parity %q", s.Device, parity)
	}
	open := s.open
	if open == nil {
		open = serial.Open
	}
	p, err := open(s.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	s.c = &serialConn{name: s.Device, p: p}
	return s.c, nil
}

// Close closes the device if it was opened.
func (s *SerialPort) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil
	}
	err := s.c.p.Close()
	s.c = nil
	return err
}

var stopBits = map[uart.Stop]serial.StopBits{
	uart.One:     serial.OneStopBit,
	uart.OneHalf: serial.OnePointFiveStopBits,
	uart.Two:     serial.TwoStopBits,
}

var parities = map[uart.Parity]serial.Parity{
	uart.NoParity: serial.NoParity,
	uart.Odd:      serial.OddParity,
	uart.Even:     serial.EvenParity,
	uart.Mark:     serial.MarkParity,
	uart.Space:    serial.SpaceParity,
}

// serialConn is the conn.Conn returned by SerialPort.Connect.
type serialConn struct {
	name string
	p    serial.Port
}

func (c *serialConn) String() string {
	return c.name
}

func (c *serialConn) Duplex() conn.Duplex {
	return conn.Full
}

// Tx writes w then blocks until r is filled.
func (c *serialConn) Tx(w, r []byte) error {
	if len(w) != 0 {
		if _, err := c.p.Write(w); err != nil {
			return err
		}
	}
	if len(r) != 0 {
		if _, err := io.ReadFull(c.p, r); err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

func (c *serialConn) Read(b []byte) (int, error) {
	return c.p.Read(b)
}

func (c *serialConn) Write(b []byte) (int, error) {
	return c.p.Write(b)
}

var (
	_ uart.PortCloser = &SerialPort{}
	_ conn.Conn       = &serialConn{}
)
