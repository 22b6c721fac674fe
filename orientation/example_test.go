// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package orientation_test

import (
	"context"
	"image/color"
	"log"

	"periph.io/x/wioterminal"
	"periph.io/x/wioterminal/orientation"
	"periph.io/x/wioterminal/samd51"
)

func Example() {
	p, err := samd51.Take(nil)
	if err != nil {
		log.Fatal(err)
	}
	pins, err := wioterminal.NewPins(p.PORT)
	if err != nil {
		log.Fatal(err)
	}
	clocks, err := samd51.NewClocks(p.GCLK)
	if err != nil {
		log.Fatal(err)
	}
	sets, err := pins.Split()
	if err != nil {
		log.Fatal(err)
	}
	accel, err := sets.Accelerometer.Init(p.SERCOM[4], clocks)
	if err != nil {
		log.Fatal(err)
	}
	lcd, _, err := sets.Display.Init(p.SERCOM[7], clocks, nil)
	if err != nil {
		log.Fatal(err)
	}
	redraw := func() error {
		return lcd.FillRect(lcd.Bounds(), color.Black)
	}
	a := orientation.New(accel, lcd, redraw, nil)
	if err := a.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
