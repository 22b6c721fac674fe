// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/wioterminal/ili9341"
	"periph.io/x/wioterminal/orientation"
)

func TestRun(t *testing.T) {
	lcd := &panel{}
	backlight := &gpiotest.Pin{N: "LCD_BACKLIGHT", L: gpio.High}
	a := orientation.New(&accel{}, lcd, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, a, lcd, backlight); err != nil {
		t.Fatal(err)
	}
	if !lcd.halted || backlight.Read() != gpio.Low {
		t.Fatal(lcd.halted, backlight.Read())
	}
}

func TestRun_sensorError(t *testing.T) {
	lcd := &panel{}
	backlight := &gpiotest.Pin{N: "LCD_BACKLIGHT", L: gpio.High}
	a := orientation.New(&accel{err: errors.New("nack")}, lcd, nil, nil)
	if err := run(context.Background(), a, lcd, backlight); !errors.Is(err, orientation.ErrSensorRead) {
		t.Fatalf("run() = %v", err)
	}
	if lcd.halted || backlight.Read() != gpio.Low {
		t.Fatal(lcd.halted, backlight.Read())
	}
}

//

type accel struct {
	err error
}

func (a *accel) ReadRaw() (x, y, z int16, err error) {
	return 0, 0, 0, a.err
}

type panel struct {
	halted bool
}

func (p *panel) String() string {
	return "panel"
}

func (p *panel) Halt() error {
	p.halted = true
	return nil
}

func (p *panel) SetOrientation(o ili9341.Orientation) error {
	return nil
}
