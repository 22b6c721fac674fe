// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/uart"
)

// NumSercom is the number of SERCOM controllers.
const NumSercom = 8

// NumTCC is the number of TCC controllers.
const NumTCC = 5

// Wiring connects controllers and pins to the buses and lines that carry
// their traffic. Every field is optional; an unwired SERCOM still binds but
// its transfers fail with ErrTransfer.
type Wiring struct {
	// SPI maps a SERCOM index to the port its SPI traffic goes to. Connect is
	// called once, by the first bind, with the achieved frequency.
	SPI map[int]spi.Port
	// I2C maps a SERCOM index to a bus. The binder sets the achieved speed.
	I2C map[int]i2c.Bus
	// UART maps a SERCOM index to a port. The binder calls Connect once with
	// the requested baud rate.
	UART map[int]uart.Port
	// Lines maps a physical pin to a GPIO line mirroring it.
	Lines map[ID]gpio.PinIO
}

// Peripherals holds the controller identities of one chip.
type Peripherals struct {
	PORT   *PortController
	GCLK   *GCLK
	SERCOM [NumSercom]*Sercom
	TCC    [NumTCC]*TCC
	USB    *USBController
}

// New returns the controllers of a chip wired as w, which may be nil.
//
// Each call returns an independent chip. Programs should use Take, which
// hands out the controllers once per process.
func New(w *Wiring) *Peripherals {
	if w == nil {
		w = &Wiring{}
	}
	p := &Peripherals{
		PORT: &PortController{wires: w.Lines},
		GCLK: &GCLK{},
		USB:  &USBController{},
	}
	for i := range p.SERCOM {
		p.SERCOM[i] = &Sercom{n: i, spi: w.SPI[i], i2c: w.I2C[i], uart: w.UART[i]}
	}
	for i := range p.TCC {
		p.TCC[i] = &TCC{n: i}
	}
	return p
}

// Take returns the controllers of the chip the process runs against.
//
// It succeeds once; later calls return ErrTaken.
func Take(w *Wiring) (*Peripherals, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.taken {
		return nil, fmt.Errorf("%w: peripherals", ErrTaken)
	}
	dev.taken = true
	return New(w), nil
}

// Sercom is a serial communication controller. It is bound to one role (SPI,
// I²C or USART) until the handle is unbound.
type Sercom struct {
	n     int
	owner string

	spi  spi.Port
	i2c  i2c.Bus
	uart uart.Port

	// The host SPI connection outlives an Unbind, since a port can only be
	// connected once.
	spiConn spi.Conn
	spiFreq physic.Frequency
	spiMode spi.Mode
}

func (s *Sercom) String() string {
	return "SERCOM" + strconv.Itoa(s.n)
}

// Index returns the controller number.
func (s *Sercom) Index() int {
	return s.n
}

// CoreChannel returns the peripheral clock channel of the controller core.
func (s *Sercom) CoreChannel() Channel {
	return sercomCore[s.n]
}

// Role returns the role the controller is bound to, if any.
func (s *Sercom) Role() string {
	return s.owner
}

func (s *Sercom) available() error {
	if s.owner != "" {
		return fmt.Errorf("%w: %s is bound as %s", ErrTaken, s, s.owner)
	}
	return nil
}

func (s *Sercom) bind(role string) {
	s.owner = role
	logf("samd51: %s bound as %s", s, role)
}

func (s *Sercom) unbind() {
	logf("samd51: %s released from %s", s, s.owner)
	s.owner = ""
}

// connectSPI connects the wired port. A later bind reuses the connection when
// the rate and mode match.
func (s *Sercom) connectSPI(f physic.Frequency, mode spi.Mode) (spi.Conn, error) {
	if s.spi == nil {
		return nil, nil
	}
	if s.spiConn != nil {
		if f != s.spiFreq || mode != s.spiMode {
			return nil, fmt.Errorf("%w: %s: host port is connected at %s %s", ErrConfig, s, s.spiFreq, s.spiMode)
		}
		return s.spiConn, nil
	}
	c, err := s.spi.Connect(f, mode, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfig, s, err)
	}
	s.spiConn, s.spiFreq, s.spiMode = c, f, mode
	return c, nil
}

var sercomCore = [NumSercom]Channel{
	ChannelSERCOM0Core, ChannelSERCOM1Core, ChannelSERCOM2Core, ChannelSERCOM3Core,
	ChannelSERCOM4Core, ChannelSERCOM5Core, ChannelSERCOM6Core, ChannelSERCOM7Core,
}

// TCC is a timer/counter for control applications.
type TCC struct {
	n     int
	bound bool
}

func (t *TCC) String() string {
	return "TCC" + strconv.Itoa(t.n)
}

// Index returns the controller number.
func (t *TCC) Index() int {
	return t.n
}

// Channel returns the peripheral clock channel; TCC0/TCC1 and TCC2/TCC3 share
// one.
func (t *TCC) Channel() Channel {
	switch t.n {
	case 0, 1:
		return ChannelTCC0TCC1
	case 2, 3:
		return ChannelTCC2TCC3
	default:
		return ChannelTCC4
	}
}

// maxPeriod returns the largest PER value of the counter.
func (t *TCC) maxPeriod() uint32 {
	if t.n < 2 {
		return 1<<24 - 1
	}
	return 1<<16 - 1
}

// compareChannels returns the number of compare channels; waveform output n
// is driven by channel n modulo this count.
func (t *TCC) compareChannels() int {
	return [NumTCC]int{6, 4, 3, 2, 2}[t.n]
}

func (t *TCC) available() error {
	if t.bound {
		return fmt.Errorf("%w: %s", ErrTaken, t)
	}
	return nil
}

// USBController is the full-speed USB controller.
type USBController struct {
	bound bool
}

func (u *USBController) String() string {
	return "USB"
}

// GCLK is the generic clock controller. Claim it with NewClocks.
type GCLK struct {
	claimed bool
}

func (g *GCLK) String() string {
	return "GCLK"
}

//

var dev struct {
	mu    sync.Mutex
	taken bool
}

// reset makes Take usable again. Used by tests.
func reset() {
	dev.mu.Lock()
	dev.taken = false
	dev.mu.Unlock()
}
