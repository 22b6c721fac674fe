// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/physic"
)

// Source is an oscillator that can feed a generator.
type Source uint8

// Clock sources.
const (
	DFLL      Source = iota // DFLL48M, 48MHz open loop
	DPLL0                   // FDPLL0, 120MHz
	DPLL1                   // FDPLL1, not started
	OSCULP32K               // ultra low power 32.768kHz
	XOSC32K                 // external 32.768kHz crystal
)

var sourceNames = [...]string{"DFLL", "DPLL0", "DPLL1", "OSCULP32K", "XOSC32K"}

func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "Source(" + strconv.Itoa(int(s)) + ")"
}

// Frequency returns the output of the oscillator, 0 when it is not running.
func (s Source) Frequency() physic.Frequency {
	switch s {
	case DFLL:
		return 48 * physic.MegaHertz
	case DPLL0:
		return 120 * physic.MegaHertz
	case OSCULP32K, XOSC32K:
		return 32768 * physic.Hertz
	default:
		return 0
	}
}

// Generator is a generic clock generator.
type Generator uint8

// NumGenerators is the number of generic clock generators.
const NumGenerators = 12

// Generic clock generators.
const (
	GCLK0 Generator = iota
	GCLK1
	GCLK2
	GCLK3
	GCLK4
	GCLK5
	GCLK6
	GCLK7
	GCLK8
	GCLK9
	GCLK10
	GCLK11
)

func (g Generator) String() string {
	return "GCLK" + strconv.Itoa(int(g))
}

// maxDiv returns the largest division factor; GCLK1 has a 16 bit divider.
func (g Generator) maxDiv() uint32 {
	if g == GCLK1 {
		return 1<<16 - 1
	}
	return 1<<8 - 1
}

// Channel is a peripheral clock channel (PCHCTRLm index).
type Channel uint8

// Peripheral clock channels.
const (
	ChannelDFLL48      Channel = 0
	ChannelFDPLL0      Channel = 1
	ChannelSERCOMSlow  Channel = 3
	ChannelSERCOM0Core Channel = 7
	ChannelSERCOM1Core Channel = 8
	ChannelUSB         Channel = 10
	ChannelSERCOM2Core Channel = 23
	ChannelSERCOM3Core Channel = 24
	ChannelTCC0TCC1    Channel = 25
	ChannelTCC2TCC3    Channel = 29
	ChannelSERCOM4Core Channel = 34
	ChannelSERCOM5Core Channel = 35
	ChannelSERCOM6Core Channel = 36
	ChannelSERCOM7Core Channel = 37
	ChannelTCC4        Channel = 38
)

var channelNames = map[Channel]string{
	ChannelDFLL48:      "DFLL48",
	ChannelFDPLL0:      "FDPLL0",
	ChannelSERCOMSlow:  "SERCOM_SLOW",
	ChannelSERCOM0Core: "SERCOM0_CORE",
	ChannelSERCOM1Core: "SERCOM1_CORE",
	ChannelUSB:         "USB",
	ChannelSERCOM2Core: "SERCOM2_CORE",
	ChannelSERCOM3Core: "SERCOM3_CORE",
	ChannelTCC0TCC1:    "TCC0_TCC1",
	ChannelTCC2TCC3:    "TCC2_TCC3",
	ChannelSERCOM4Core: "SERCOM4_CORE",
	ChannelSERCOM5Core: "SERCOM5_CORE",
	ChannelSERCOM6Core: "SERCOM6_CORE",
	ChannelSERCOM7Core: "SERCOM7_CORE",
	ChannelTCC4:        "TCC4",
}

func (c Channel) String() string {
	if s, ok := channelNames[c]; ok {
		return s
	}
	return "PCHCTRL" + strconv.Itoa(int(c))
}

// Generator purposes set up at reset.
const (
	PurposeMain    = "main"
	PurposeDFLL    = "dfll"
	Purpose32k     = "32k"
	PurposeDPLLRef = "dpll-ref"
	PurposeUSB     = "usb"
)

type generator struct {
	enabled bool
	src     Source
	div     uint32
	purpose string
}

func (g *generator) frequency() physic.Frequency {
	return g.src.Frequency() / physic.Frequency(g.div)
}

// Clocks is the clock tree context: the state of the generic clock
// generators and of the peripheral channels they feed.
//
// It is created once per chip and passed to every binder.
type Clocks struct {
	gens     [NumGenerators]generator
	channels map[Channel]Generator
}

// NewClocks claims the generic clock controller and sets it up the way the
// boot code leaves it:
//
//   - GCLK0: DPLL0/1, 120MHz, main clock
//   - GCLK1: DFLL/1, 48MHz
//   - GCLK3: OSCULP32K/1, 32.768kHz
//   - GCLK5: DFLL/24, 2MHz reference of DPLL0
//
// The other generators are free.
func NewClocks(g *GCLK) (*Clocks, error) {
	if g.claimed {
		return nil, fmt.Errorf("%w: %s", ErrTaken, g)
	}
	g.claimed = true
	c := &Clocks{channels: map[Channel]Generator{}}
	c.gens[GCLK0] = generator{enabled: true, src: DPLL0, div: 1, purpose: PurposeMain}
	c.gens[GCLK1] = generator{enabled: true, src: DFLL, div: 1, purpose: PurposeDFLL}
	c.gens[GCLK3] = generator{enabled: true, src: OSCULP32K, div: 1, purpose: Purpose32k}
	c.gens[GCLK5] = generator{enabled: true, src: DFLL, div: 24, purpose: PurposeDPLLRef}
	c.channels[ChannelFDPLL0] = GCLK5
	return c, nil
}

// Gclk0 returns the main clock generator.
func (c *Clocks) Gclk0() Generator {
	return GCLK0
}

// Frequency returns the output of generator g.
func (c *Clocks) Frequency(g Generator) (physic.Frequency, error) {
	if g >= NumGenerators || !c.gens[g].enabled {
		return 0, fmt.Errorf("%w: %s is not enabled", ErrClockUnavailable, g)
	}
	return c.gens[g].frequency(), nil
}

// Purpose returns what generator g is allocated to, "" when free.
func (c *Clocks) Purpose(g Generator) string {
	if g >= NumGenerators {
		return ""
	}
	return c.gens[g].purpose
}

// Configure sets generator g to src divided by div and allocates it to
// purpose.
//
// A generator already allocated to another purpose is not touched: call
// Release first. A generator feeding enabled channels cannot change
// frequency.
func (c *Clocks) Configure(g Generator, div uint32, src Source, purpose string) (physic.Frequency, error) {
	if g >= NumGenerators {
		return 0, fmt.Errorf("%w: no generator %d", ErrClockUnavailable, g)
	}
	if purpose == "" {
		return 0, fmt.Errorf("samd51: %s: purpose is required", g)
	}
	if div == 0 || div > g.maxDiv() {
		return 0, fmt.Errorf("%w: %s: division factor %d out of range [1, %d]", ErrConfig, g, div, g.maxDiv())
	}
	if src.Frequency() == 0 {
		return 0, fmt.Errorf("%w: %s is not running", ErrClockUnavailable, src)
	}
	cur := &c.gens[g]
	if cur.enabled && cur.purpose != purpose {
		return 0, fmt.Errorf("%w: %s is allocated to %q", ErrClockUnavailable, g, cur.purpose)
	}
	next := generator{enabled: true, src: src, div: div, purpose: purpose}
	if cur.enabled && next.frequency() != cur.frequency() && len(c.fed(g)) != 0 {
		return 0, fmt.Errorf("%w: %s feeds %v", ErrClockUnavailable, g, c.fed(g))
	}
	*cur = next
	logf("samd51: %s = %s/%d (%s) for %s", g, src, div, next.frequency(), purpose)
	return next.frequency(), nil
}

// Release frees generator g so it can be configured for another purpose.
//
// GCLK0 and generators feeding enabled channels cannot be released.
func (c *Clocks) Release(g Generator) error {
	if g == GCLK0 || g >= NumGenerators {
		return fmt.Errorf("samd51: %s cannot be released", g)
	}
	if ch := c.fed(g); len(ch) != 0 {
		return fmt.Errorf("samd51: %s feeds %v", g, ch)
	}
	c.gens[g] = generator{}
	return nil
}

// Acquire returns a generator running at exactly f for purpose.
//
// A generator already allocated to purpose at f is reused. Otherwise the
// lowest free generator is configured from the first running source that
// divides down to f.
func (c *Clocks) Acquire(purpose string, f physic.Frequency) (Generator, error) {
	if f <= 0 {
		return 0, fmt.Errorf("%w: invalid frequency %s", ErrClockUnavailable, f)
	}
	for i := range c.gens {
		g := &c.gens[i]
		if g.enabled && g.purpose == purpose && g.frequency() == f {
			return Generator(i), nil
		}
	}
	for i := GCLK1; i < NumGenerators; i++ {
		if c.gens[i].enabled {
			continue
		}
		for _, src := range [...]Source{DFLL, DPLL0, XOSC32K, OSCULP32K} {
			sf := src.Frequency()
			if sf%f != 0 {
				continue
			}
			div := uint32(sf / f)
			if div == 0 || div > i.maxDiv() {
				continue
			}
			if _, err := c.Configure(i, div, src, purpose); err != nil {
				return 0, err
			}
			return i, nil
		}
		break
	}
	return 0, fmt.Errorf("%w: no free generator can produce %s for %q", ErrClockUnavailable, f, purpose)
}

// Enable connects channel ch to generator g and returns the resulting
// peripheral clock.
//
// Enabling a channel again with the same generator is a no-op; a channel
// already fed by another generator is not switched.
func (c *Clocks) Enable(ch Channel, g Generator) (physic.Frequency, error) {
	f, err := c.Frequency(g)
	if err != nil {
		return 0, err
	}
	if cur, ok := c.channels[ch]; ok && cur != g {
		return 0, fmt.Errorf("%w: %s is fed by %s", ErrClockUnavailable, ch, cur)
	}
	c.channels[ch] = g
	logf("samd51: %s <- %s (%s)", ch, g, f)
	return f, nil
}

// Source returns the generator feeding channel ch.
func (c *Clocks) Source(ch Channel) (Generator, bool) {
	g, ok := c.channels[ch]
	return g, ok
}

func (c *Clocks) fed(g Generator) []Channel {
	var out []Channel
	for ch, v := range c.channels {
		if v == g {
			out = append(out, ch)
		}
	}
	return out
}

// divisor returns the smallest d = base + step*k, k in [0, max], such that
// ref/d <= f.
func divisor(ref, f physic.Frequency, base, step, max int64) (int64, error) {
	if f <= 0 {
		return 0, fmt.Errorf("%w: invalid frequency %s", ErrClockUnavailable, f)
	}
	need := (int64(ref) + int64(f) - 1) / int64(f)
	k := int64(0)
	if need > base {
		k = (need - base + step - 1) / step
	}
	if k > max {
		return 0, fmt.Errorf("%w: %s cannot be derived from %s", ErrClockUnavailable, f, ref)
	}
	return base + step*k, nil
}
