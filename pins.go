// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"fmt"

	"periph.io/x/wioterminal/samd51"
)

// Pins is the registry of the board's named pins.
//
// It is created once per chip, by claiming the PORT controller. Pins are
// moved out either one at a time with Take, or all at once into functional
// bundles with Split. A physical pin is only ever handed out once.
type Pins struct {
	cat      *Catalog
	port     *samd51.Port
	consumed bool
	reserved map[string]string // name -> bundle, set by Split
}

// NewPins claims pc and returns the registry of the board's pins.
//
// It fails with samd51.ErrTaken when pc was already claimed.
func NewPins(pc *samd51.PortController) (*Pins, error) {
	cat, err := LoadCatalog()
	if err != nil {
		return nil, err
	}
	port, err := pc.Claim()
	if err != nil {
		return nil, err
	}
	return &Pins{cat: cat, port: port}, nil
}

// Catalog returns the pin table the registry was built from.
func (p *Pins) Catalog() *Catalog {
	return p.cat
}

// Port returns the PORT the pins belong to.
func (p *Pins) Port() *samd51.Port {
	return p.port
}

// Conflicts returns the physical pins shared by several names.
func (p *Pins) Conflicts() map[samd51.ID][]string {
	return p.cat.Conflicts()
}

// Take moves the pin named name out of the registry.
//
// It fails with samd51.ErrTaken when the pin, or a name sharing its physical
// pin, was already taken, or when the registry was consumed by Split.
func (p *Pins) Take(name string) (*samd51.Pin, error) {
	if p.consumed {
		return nil, fmt.Errorf("%w: pins were split", samd51.ErrTaken)
	}
	return p.take(name)
}

func (p *Pins) take(name string) (*samd51.Pin, error) {
	if b, ok := p.reserved[name]; ok {
		return nil, fmt.Errorf("%w: %s belongs to the %s bundle", samd51.ErrTaken, name, b)
	}
	s, ok := p.cat.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("wioterminal: unknown pin %q", name)
	}
	return p.port.Claim(s.ID, name, s.Funcs)
}
