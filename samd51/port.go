// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"
	"sort"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

// PortController is the PORT peripheral. It can be claimed once.
type PortController struct {
	claimed bool
	wires   map[ID]gpio.PinIO
}

func (pc *PortController) String() string {
	return "PORT"
}

// Claim returns the PORT register block. A second call fails with ErrTaken.
func (pc *PortController) Claim() (*Port, error) {
	if pc.claimed {
		return nil, fmt.Errorf("%w: PORT", ErrTaken)
	}
	pc.claimed = true
	logf("samd51: PORT claimed")
	return &Port{wires: pc.wires}, nil
}

// Port owns the state of every physical pin.
type Port struct {
	lines [NumPins]line
	wires map[ID]gpio.PinIO
}

// line is the register state of one physical pin.
type line struct {
	name    string
	funcs   map[Mux]pin.Func
	claimed bool
	gen     uint32

	dir       bool // DIR: output
	out       gpio.Level
	pull      gpio.Pull
	openDrain bool
	pmuxen    bool
	pmux      Mux
}

// Claim takes ownership of physical pin id under the given name and returns it
// unconfigured (floating input). funcs lists the alternate functions the pin
// offers.
//
// A pin can be claimed once; a second claim fails with ErrTaken naming the
// current owner.
func (p *Port) Claim(id ID, name string, funcs map[Mux]pin.Func) (*Pin, error) {
	if int(id) >= NumPins {
		return nil, fmt.Errorf("samd51: invalid pin %d", id)
	}
	l := &p.lines[id]
	if l.claimed {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrTaken, id, l.name)
	}
	f := make(map[Mux]pin.Func, len(funcs))
	for m, v := range funcs {
		f[m] = v
	}
	*l = line{name: name, funcs: f, claimed: true, gen: l.gen + 1, pull: gpio.Float}
	if w := p.wires[id]; w != nil {
		if err := w.In(gpio.Float, gpio.NoEdge); err != nil {
			*l = line{gen: l.gen}
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, id, err)
		}
	}
	logf("samd51: %s claimed as %s", id, name)
	return &Pin{handle{port: p, id: id, gen: l.gen}}, nil
}

// Owner returns the name id was claimed under, if any.
func (p *Port) Owner(id ID) (string, bool) {
	l := &p.lines[id]
	return l.name, l.claimed
}

// Func returns the current function of physical pin id.
func (p *Port) Func(id ID) pin.Func {
	l := &p.lines[id]
	if !l.claimed {
		return pin.FuncNone
	}
	if l.pmuxen {
		return l.funcs[l.pmux]
	}
	if l.dir {
		if l.out {
			return gpio.OUT_HIGH
		}
		return gpio.OUT_LOW
	}
	return gpio.IN
}

// Level returns the level of physical pin id: the driven level of an output,
// or the sampled level of an input.
func (p *Port) Level(id ID) gpio.Level {
	l := &p.lines[id]
	if l.dir {
		return l.out
	}
	if w := p.wires[id]; w != nil {
		return w.Read()
	}
	return gpio.Level(l.pull == gpio.PullUp)
}

// handle is the part shared by every pin handle.
//
// A handle is valid while its generation matches the line's. Each transfer
// bumps the generation, which invalidates every older handle of that pin.
type handle struct {
	port *Port
	id   ID
	gen  uint32
}

func (h *handle) line() (*line, error) {
	l := &h.port.lines[h.id]
	if !l.claimed || l.gen != h.gen {
		return nil, fmt.Errorf("%w: %s was moved to another role", ErrTaken, h.id)
	}
	return l, nil
}

// move invalidates h and returns the handle that replaces it.
func (h *handle) move() (handle, *line, error) {
	l, err := h.line()
	if err != nil {
		return handle{}, nil, err
	}
	l.gen++
	return handle{port: h.port, id: h.id, gen: l.gen}, l, nil
}

func (h *handle) wire() gpio.PinIO {
	return h.port.wires[h.id]
}

// ID returns the physical pin.
func (h *handle) ID() ID {
	return h.id
}

// String implements conn.Resource.
func (h *handle) String() string {
	return h.Name() + "(" + h.id.String() + ")"
}

// Halt implements conn.Resource.
func (h *handle) Halt() error {
	return nil
}

// Name implements pin.Pin.
func (h *handle) Name() string {
	return h.port.lines[h.id].name
}

// Number implements pin.Pin.
func (h *handle) Number() int {
	return int(h.id)
}

// Function implements pin.Pin.
func (h *handle) Function() string {
	return string(h.Func())
}

// Func implements pin.PinFunc.
//
// A stale handle reports pin.FuncNone.
func (h *handle) Func() pin.Func {
	if _, err := h.line(); err != nil {
		return pin.FuncNone
	}
	return h.port.Func(h.id)
}

// SupportedFuncs implements pin.PinFunc.
func (h *handle) SupportedFuncs() []pin.Func {
	l := &h.port.lines[h.id]
	muxes := make([]int, 0, len(l.funcs))
	for m := range l.funcs {
		muxes = append(muxes, int(m))
	}
	sort.Ints(muxes)
	out := []pin.Func{gpio.IN, gpio.OUT}
	for _, m := range muxes {
		out = append(out, l.funcs[Mux(m)])
	}
	return out
}

// SetFunc implements pin.PinFunc.
//
// Roles are changed with the Into* transfers, which return a new handle.
func (h *handle) SetFunc(f pin.Func) error {
	return fmt.Errorf("samd51: %s: use the Into* methods to change the role to %s", h.id, f)
}

// mux returns the function group that offers f.
func (h *handle) mux(f pin.Func) (Mux, bool) {
	for m, v := range h.port.lines[h.id].funcs {
		if v == f {
			return m, true
		}
	}
	return 0, false
}

// Pin is an unconfigured pin: a floating input.
type Pin struct {
	handle
}

// Read samples the pin.
func (p *Pin) Read() gpio.Level {
	if _, err := p.line(); err != nil {
		return gpio.Low
	}
	return p.port.Level(p.id)
}

// IntoPushPullOutput consumes p and returns it as a push-pull output driven
// low.
func (p *Pin) IntoPushPullOutput() (*Output, error) {
	return p.intoOutput(false)
}

// IntoOpenDrainOutput consumes p and returns it as an open-drain output
// driven low.
func (p *Pin) IntoOpenDrainOutput() (*Output, error) {
	return p.intoOutput(true)
}

func (p *Pin) intoOutput(openDrain bool) (*Output, error) {
	if _, err := p.line(); err != nil {
		return nil, err
	}
	if w := p.wire(); w != nil {
		if err := w.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTransfer, p.id, err)
		}
	}
	h, l, _ := p.move()
	l.dir = true
	l.out = gpio.Low
	l.openDrain = openDrain
	l.pull = gpio.Float
	return &Output{handle: h}, nil
}

// IntoPullUpInput consumes p and returns it as an input with the pull-up
// enabled.
func (p *Pin) IntoPullUpInput() (*Input, error) {
	return p.intoInput(gpio.PullUp)
}

// IntoPullDownInput consumes p and returns it as an input with the pull-down
// enabled.
func (p *Pin) IntoPullDownInput() (*Input, error) {
	return p.intoInput(gpio.PullDown)
}

func (p *Pin) intoInput(pull gpio.Pull) (*Input, error) {
	if _, err := p.line(); err != nil {
		return nil, err
	}
	if w := p.wire(); w != nil {
		if err := w.In(pull, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, p.id, err)
		}
	}
	h, l, _ := p.move()
	l.pull = pull
	return &Input{handle: h}, nil
}

// IntoFunction consumes p and switches it to the alternate function f.
func (p *Pin) IntoFunction(f pin.Func) (*Alt, error) {
	if _, err := p.line(); err != nil {
		return nil, err
	}
	m, ok := p.mux(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not support %s", ErrPad, p, f)
	}
	return p.intoMux(m)
}

func (p *Pin) intoMux(m Mux) (*Alt, error) {
	h, l, err := p.move()
	if err != nil {
		return nil, err
	}
	l.pmuxen = true
	l.pmux = m
	l.dir = false
	l.pull = gpio.Float
	logf("samd51: %s -> %s (%s)", h.id, l.funcs[m], m)
	return &Alt{handle: h}, nil
}

// Output is a pin configured as an output.
//
// Output implements gpio.PinOut.
type Output struct {
	handle
}

// Out implements gpio.PinOut.
func (o *Output) Out(v gpio.Level) error {
	l, err := o.line()
	if err != nil {
		return err
	}
	if w := o.wire(); w != nil {
		if err := w.Out(v); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrTransfer, o.id, err)
		}
	}
	l.out = v
	return nil
}

// Toggle inverts the driven level.
func (o *Output) Toggle() error {
	l, err := o.line()
	if err != nil {
		return err
	}
	return o.Out(!l.out)
}

// Read returns the driven level.
func (o *Output) Read() gpio.Level {
	if _, err := o.line(); err != nil {
		return gpio.Low
	}
	return o.port.lines[o.id].out
}

// OpenDrain reports whether the output is open-drain.
func (o *Output) OpenDrain() bool {
	return o.port.lines[o.id].openDrain
}

// PWM implements gpio.PinOut.
//
// It is not supported on a GPIO output; bind the pin with NewPWM instead.
func (o *Output) PWM(duty gpio.Duty, f physic.Frequency) error {
	return fmt.Errorf("samd51: %s: PWM requires a TCC binder", o.id)
}

// IntoFloatingInput consumes o and returns the pin unconfigured.
func (o *Output) IntoFloatingInput() (*Pin, error) {
	return o.handle.release()
}

// Input is a pin configured as an input with a pull resistor.
//
// Input implements gpio.PinIn.
type Input struct {
	handle
}

// In implements gpio.PinIn.
//
// Only the pull can be changed; edge detection requires the EIC which is not
// modeled.
func (i *Input) In(pull gpio.Pull, edge gpio.Edge) error {
	l, err := i.line()
	if err != nil {
		return err
	}
	if edge != gpio.NoEdge {
		return fmt.Errorf("samd51: %s: edge detection is not supported", i.id)
	}
	if pull == gpio.PullNoChange {
		return nil
	}
	if w := i.wire(); w != nil {
		if err := w.In(pull, gpio.NoEdge); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrConfig, i.id, err)
		}
	}
	l.pull = pull
	return nil
}

// Read implements gpio.PinIn.
func (i *Input) Read() gpio.Level {
	if _, err := i.line(); err != nil {
		return gpio.Low
	}
	return i.port.Level(i.id)
}

// WaitForEdge implements gpio.PinIn.
//
// It always returns false.
func (i *Input) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull implements gpio.PinIn.
func (i *Input) Pull() gpio.Pull {
	return i.port.lines[i.id].pull
}

// DefaultPull implements gpio.PinIn.
func (i *Input) DefaultPull() gpio.Pull {
	return gpio.Float
}

// IntoFloatingInput consumes i and returns the pin unconfigured.
func (i *Input) IntoFloatingInput() (*Pin, error) {
	return i.handle.release()
}

// Alt is a pin switched to one of its alternate functions.
type Alt struct {
	handle
}

// Mux returns the selected function group.
func (a *Alt) Mux() Mux {
	return a.port.lines[a.id].pmux
}

// IntoFloatingInput consumes a and returns the pin unconfigured.
func (a *Alt) IntoFloatingInput() (*Pin, error) {
	return a.handle.release()
}

func (h *handle) release() (*Pin, error) {
	if _, err := h.line(); err != nil {
		return nil, err
	}
	if w := h.wire(); w != nil {
		if err := w.In(gpio.Float, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfig, h.id, err)
		}
	}
	n, l, _ := h.move()
	l.dir = false
	l.pmuxen = false
	l.openDrain = false
	l.pull = gpio.Float
	return &Pin{handle: n}, nil
}

var (
	_ gpio.PinOut = &Output{}
	_ gpio.PinIn  = &Input{}
	_ pin.PinFunc = &Pin{}
	_ pin.PinFunc = &Alt{}
)
