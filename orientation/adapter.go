// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package orientation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/wioterminal/ili9341"
)

// ErrSensorRead is returned when the accelerometer could not be read. It
// wraps the cause.
var ErrSensorRead = errors.New("orientation: sensor read failed")

// Source is an accelerometer returning raw samples, like *wioterminal.Accel.
type Source interface {
	ReadRaw() (x, y, z int16, err error)
}

// Target is a display that can be rotated, like *ili9341.Dev.
type Target interface {
	SetOrientation(o ili9341.Orientation) error
}

// DefaultInterval is the default polling period of Run.
const DefaultInterval = 50 * time.Millisecond

// Opts holds the options of an Adapter.
type Opts struct {
	// Threshold is passed to NewTracker.
	Threshold int32
	// Interval is the polling period of Run. Defaults to DefaultInterval.
	Interval time.Duration
	// Clock drives Run. Defaults to the real clock.
	Clock clockwork.Clock
}

// Adapter rotates a display to follow the board's orientation.
//
// It is not safe for concurrent use.
type Adapter struct {
	src      Source
	dst      Target
	redraw   func() error
	tracker  *Tracker
	interval time.Duration
	clk      clockwork.Clock

	state     Sensor
	baselined bool
}

// New returns an Adapter rotating dst according to src. redraw, which may be
// nil, is called after each rotation to repaint the content.
func New(src Source, dst Target, redraw func() error, opts *Opts) *Adapter {
	if opts == nil {
		opts = &Opts{}
	}
	a := &Adapter{
		src:      src,
		dst:      dst,
		redraw:   redraw,
		tracker:  NewTracker(opts.Threshold),
		interval: opts.Interval,
		clk:      opts.Clock,
	}
	if a.interval <= 0 {
		a.interval = DefaultInterval
	}
	if a.clk == nil {
		a.clk = clockwork.NewRealClock()
	}
	return a
}

// State returns the orientation the display was last adapted to, or the
// baseline.
func (a *Adapter) State() Sensor {
	return a.state
}

// Baseline reads the accelerometer once and records the result as the
// current state. The display is neither rotated nor redrawn.
func (a *Adapter) Baseline() (Sensor, error) {
	s, err := a.read()
	if err != nil {
		return Unknown, err
	}
	a.state = s
	a.baselined = true
	return s, nil
}

// Step reads the accelerometer once. When the orientation maps to a display
// orientation and differs from the state, the display is rotated and
// redrawn, and the state updated. It reports whether the display changed.
//
// Unknown and lying flat never change anything.
func (a *Adapter) Step() (bool, error) {
	s, err := a.read()
	if err != nil {
		return false, err
	}
	o, ok := Map(s)
	if !ok || s == a.state {
		return false, nil
	}
	if err := a.dst.SetOrientation(o); err != nil {
		return false, fmt.Errorf("orientation: rotate to %s: %w", o, err)
	}
	if a.redraw != nil {
		if err := a.redraw(); err != nil {
			return false, fmt.Errorf("orientation: redraw: %w", err)
		}
	}
	a.state = s
	return true, nil
}

// Run calls Step every interval until ctx is done or a step fails. The
// baseline is taken first if Baseline was not called.
//
// It returns ctx.Err() on cancellation.
func (a *Adapter) Run(ctx context.Context) error {
	if !a.baselined {
		if _, err := a.Baseline(); err != nil {
			return err
		}
	}
	t := a.clk.NewTicker(a.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Chan():
			if _, err := a.Step(); err != nil {
				return err
			}
		}
	}
}

func (a *Adapter) read() (Sensor, error) {
	x, y, z, err := a.src.ReadRaw()
	if err != nil {
		return Unknown, fmt.Errorf("%w: %w", ErrSensorRead, err)
	}
	return a.tracker.Update(x, y, z), nil
}
