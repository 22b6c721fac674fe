// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/wioterminal/ili9341"
	"periph.io/x/wioterminal/samd51"
)

// Init binds s as the LCD SPI host, drives the control lines and turns the
// display and its backlight on. s is SERCOM7 on the board.
//
// The display starts in ili9341.LandscapeFlipped, the way the case holds it.
// A panel that does not answer is reported as ErrInit wrapping
// ili9341.ErrNotDetected. The returned Output is the backlight.
//
// On failure s is released and the pins are returned to d unconfigured, so
// Init can be retried.
func (d *Display) Init(s *samd51.Sercom, c *samd51.Clocks, opts *ili9341.Opts) (_ *ili9341.Dev, _ *samd51.Output, err error) {
	bus, err := samd51.NewSPI(s, c, samd51.SPIPads{MISO: d.MISO, MOSI: d.MOSI, SCK: d.SCK}, DisplayFrequency, DisplayMode)
	if err != nil {
		return nil, nil, err
	}
	var cs, dc, rst, backlight *samd51.Output
	defer func() {
		if err == nil {
			return
		}
		giveBack(&d.CS, cs)
		giveBack(&d.DC, dc)
		giveBack(&d.Reset, rst)
		giveBack(&d.Backlight, backlight)
		if pads, e := bus.Unbind(); e == nil {
			d.MISO, d.MOSI, d.SCK = pads.MISO, pads.MOSI, pads.SCK
		}
	}()
	if cs, err = d.CS.IntoPushPullOutput(); err != nil {
		return nil, nil, err
	}
	if err = cs.Out(gpio.High); err != nil {
		return nil, nil, err
	}
	if dc, err = d.DC.IntoPushPullOutput(); err != nil {
		return nil, nil, err
	}
	if rst, err = d.Reset.IntoPushPullOutput(); err != nil {
		return nil, nil, err
	}
	if backlight, err = d.Backlight.IntoPushPullOutput(); err != nil {
		return nil, nil, err
	}
	if err = backlight.Out(gpio.High); err != nil {
		return nil, nil, err
	}
	lcd, err := ili9341.New(bus, cs, dc, rst, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: display: %w", ErrInit, err)
	}
	if err = lcd.SetOrientation(ili9341.LandscapeFlipped); err != nil {
		return nil, nil, fmt.Errorf("%w: display: %w", ErrInit, err)
	}
	return lcd, backlight, nil
}
