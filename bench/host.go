// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package bench runs the board model against real hardware attached to the
// host: SPI and I²C adapters, GPIO lines and serial ports stand in for the
// chip's controllers and pins.
//
// The adapters are found through the periph.io registries, which host.Init
// fills with the host's drivers. FTDI adapters such as the FT232H are
// registered by the ftdi driver, which this package loads.
package bench

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/conn/v3/uart"
	"periph.io/x/host/v3"
	_ "periph.io/x/host/v3/ftdi"
	"periph.io/x/wioterminal/samd51"
)

// Bench holds the host resources opened for a configuration.
type Bench struct {
	// State is the result of the host driver initialization.
	State *driverreg.State
	// Wiring is to be passed to samd51.Take.
	Wiring *samd51.Wiring

	closers []io.Closer
}

// Open loads the host drivers and opens every resource cfg names.
//
// The drivers are loaded through host.Init, so that the host drivers and the
// ftdi driver are registered.
func Open(cfg *Config) (*Bench, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	b, err := open(cfg)
	if err != nil {
		return nil, err
	}
	b.State = state
	return b, nil
}

// open opens the resources from the registries as they are.
func open(cfg *Config) (*Bench, error) {
	b := &Bench{Wiring: &samd51.Wiring{
		SPI:   map[int]spi.Port{},
		I2C:   map[int]i2c.Bus{},
		UART:  map[int]uart.Port{},
		Lines: map[samd51.ID]gpio.PinIO{},
	}}
	if err := b.wire(cfg); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bench) wire(cfg *Config) error {
	for _, idx := range sortedKeys(cfg.SPI) {
		w := cfg.SPI[idx]
		p, err := spireg.Open(w.Port)
		if err != nil {
			return fmt.Errorf("bench: SERCOM%d: %w", idx, err)
		}
		b.closers = append(b.closers, p)
		if w.maxSpeed != 0 {
			if err := p.LimitSpeed(w.maxSpeed); err != nil {
				return fmt.Errorf("bench: SERCOM%d: %w", idx, err)
			}
		}
		b.Wiring.SPI[idx] = p
	}
	for _, idx := range sortedKeys(cfg.I2C) {
		bus, err := i2creg.Open(cfg.I2C[idx].Bus)
		if err != nil {
			return fmt.Errorf("bench: SERCOM%d: %w", idx, err)
		}
		b.closers = append(b.closers, bus)
		b.Wiring.I2C[idx] = bus
	}
	for _, idx := range sortedKeys(cfg.UART) {
		p := &SerialPort{Device: cfg.UART[idx].Device}
		b.closers = append(b.closers, p)
		b.Wiring.UART[idx] = p
	}
	lines, err := cfg.lines()
	if err != nil {
		return err
	}
	for id, name := range lines {
		p := gpioreg.ByName(name)
		if p == nil {
			return fmt.Errorf("bench: %s: no GPIO %q", id, name)
		}
		b.Wiring.Lines[id] = p
	}
	return nil
}

// Close closes every opened resource.
func (b *Bench) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
