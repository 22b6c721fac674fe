// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// prescalers are the TCC counter prescaler settings, in register order.
var prescalers = [...]uint32{1, 2, 4, 8, 16, 64, 256, 1024}

// PWM is a TCC waveform output driving one pin in normal PWM mode.
type PWM struct {
	t   *TCC
	out *Alt
	cc  int

	ref       physic.Frequency
	prescaler uint32
	per       uint32
	duty      gpio.Duty
	enabled   bool
}

// NewPWM binds waveform output out of t at f with a 0% duty cycle, enabled.
//
// Every f resolves: the prescaler and period are clamped to what the counter
// can do. Binding a controller or pin that is already taken, or a pin that is
// not one of t's outputs, is a programming error and panics with an error
// wrapping ErrTaken or ErrPad.
func NewPWM(t *TCC, c *Clocks, out *Pin, f physic.Frequency) *PWM {
	if err := t.available(); err != nil {
		panic(err)
	}
	r, err := route(out, fmt.Sprintf("TCC%d_WO", t.n), "PWM output")
	if err != nil {
		panic(err)
	}
	ref, err := c.Enable(t.Channel(), c.Gclk0())
	if err != nil {
		panic(err)
	}
	p := &PWM{t: t, cc: r.pad % t.compareChannels(), ref: ref}
	p.setPeriod(f)
	alts, err := commit(r)
	if err != nil {
		panic(err)
	}
	p.out = alts[0]
	p.enabled = true
	t.bound = true
	logf("samd51: %s CC%d on %s: %s (DIV%d PER=%d)", t, p.cc, p.out, p.Frequency(), p.prescaler, p.per)
	return p
}

// setPeriod picks the smallest prescaler for which the period fits the
// counter, clamping PER to [1, max].
func (p *PWM) setPeriod(f physic.Frequency) {
	max := p.t.maxPeriod()
	if f <= 0 {
		f = physic.Hertz
	}
	for _, div := range prescalers {
		counts := int64(p.ref) / (int64(div) * int64(f))
		p.prescaler = div
		if counts-1 <= int64(max) {
			p.per = clampPeriod(counts-1, max)
			return
		}
	}
	p.per = max
}

func clampPeriod(v int64, max uint32) uint32 {
	if v < 1 {
		return 1
	}
	if v > int64(max) {
		return max
	}
	return uint32(v)
}

func (p *PWM) String() string {
	return fmt.Sprintf("%s/CC%d", p.t, p.cc)
}

// Frequency returns the achieved output frequency.
func (p *PWM) Frequency() physic.Frequency {
	return p.ref / physic.Frequency(int64(p.prescaler)*int64(p.per+1))
}

// Period returns the PER register value.
func (p *PWM) Period() uint32 {
	return p.per
}

// Prescaler returns the counter prescaler.
func (p *PWM) Prescaler() uint32 {
	return p.prescaler
}

// Duty returns the requested duty cycle.
func (p *PWM) Duty() gpio.Duty {
	return p.duty
}

// Compare returns the CC register value matching the duty cycle.
func (p *PWM) Compare() uint32 {
	return uint32(int64(p.duty) * int64(p.per+1) / int64(gpio.DutyMax))
}

// SetDuty sets the duty cycle.
func (p *PWM) SetDuty(d gpio.Duty) error {
	if d < 0 || d > gpio.DutyMax {
		return fmt.Errorf("%w: %s: invalid duty %s", ErrConfig, p, d)
	}
	p.duty = d
	return p.apply()
}

// SetFrequency changes the period, keeping the duty cycle.
func (p *PWM) SetFrequency(f physic.Frequency) error {
	p.setPeriod(f)
	return p.apply()
}

// Enable starts the counter.
func (p *PWM) Enable() error {
	p.enabled = true
	return p.apply()
}

// Disable stops the counter; the output is driven low.
func (p *PWM) Disable() error {
	p.enabled = false
	return p.apply()
}

// Enabled reports whether the counter runs.
func (p *PWM) Enabled() bool {
	return p.enabled
}

// apply forwards the waveform to the wired line, if any.
func (p *PWM) apply() error {
	w := p.out.wire()
	if w == nil {
		return nil
	}
	var err error
	if p.enabled {
		err = w.PWM(p.duty, p.Frequency())
	} else {
		err = w.Out(gpio.Low)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTransfer, p, err)
	}
	return nil
}
