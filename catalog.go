// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"periph.io/x/conn/v3/pin"
	"periph.io/x/wioterminal/samd51"
)

// wio_pins.json lists every named pin of the board with the alternate
// functions of its physical pin, by function group.
//
//go:embed wio_pins.json
var wioPinsSpec []byte

type serializedPinSpec struct {
	Name      string
	Pin       samd51.ID
	FunctionB pin.Func
	FunctionC pin.Func
	FunctionD pin.Func
	FunctionE pin.Func
	FunctionF pin.Func
	FunctionG pin.Func
	FunctionH pin.Func
}

func (s *serializedPinSpec) funcs() map[samd51.Mux]pin.Func {
	out := map[samd51.Mux]pin.Func{}
	for m, f := range map[samd51.Mux]pin.Func{
		samd51.MuxB: s.FunctionB,
		samd51.MuxC: s.FunctionC,
		samd51.MuxD: s.FunctionD,
		samd51.MuxE: s.FunctionE,
		samd51.MuxF: s.FunctionF,
		samd51.MuxG: s.FunctionG,
		samd51.MuxH: s.FunctionH,
	} {
		if f != "" {
			out[m] = f
		}
	}
	return out
}

// PinSpec is one named pin of the board.
type PinSpec struct {
	Name  string
	ID    samd51.ID
	Funcs map[samd51.Mux]pin.Func
}

// Catalog is the fixed table of named pins of the board.
type Catalog struct {
	pins   []PinSpec
	byName map[string]int
}

// LoadCatalog decodes and validates the embedded pin table.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(wioPinsSpec)
}

func parseCatalog(b []byte) (*Catalog, error) {
	var raw []serializedPinSpec
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("wioterminal: invalid pin catalog: %w", err)
	}
	c := &Catalog{pins: make([]PinSpec, 0, len(raw)), byName: make(map[string]int, len(raw))}
	for i := range raw {
		s := &raw[i]
		if s.Name == "" {
			return nil, fmt.Errorf("wioterminal: pin catalog entry #%d has no name", i)
		}
		if _, ok := c.byName[s.Name]; ok {
			return nil, fmt.Errorf("wioterminal: pin %s is listed twice", s.Name)
		}
		c.byName[s.Name] = len(c.pins)
		c.pins = append(c.pins, PinSpec{Name: s.Name, ID: s.Pin, Funcs: s.funcs()})
	}
	return c, nil
}

// Lookup returns the pin named name.
func (c *Catalog) Lookup(name string) (PinSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return PinSpec{}, false
	}
	return c.pins[i], true
}

// Names returns every pin name, in table order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.pins))
	for i := range c.pins {
		out[i] = c.pins[i].Name
	}
	return out
}

// Conflicts returns the physical pins that more than one name refers to, with
// the names sorted.
//
// On the Wio Terminal the 5-way switch press and the SD card detect line are
// both routed to PD12. Only one of them can be used at a time.
func (c *Catalog) Conflicts() map[samd51.ID][]string {
	names := map[samd51.ID][]string{}
	for i := range c.pins {
		names[c.pins[i].ID] = append(names[c.pins[i].ID], c.pins[i].Name)
	}
	out := map[samd51.ID][]string{}
	for id, n := range names {
		if len(n) > 1 {
			sort.Strings(n)
			out[id] = n
		}
	}
	return out
}
