// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package wioterminal is the board support for the Seeed Wio Terminal.
//
// It names the SAMD51P19A pins the way the schematic does, hands each of them
// out exactly once, and groups them into functional bundles that bind to the
// matching controller:
//
//	p, err := samd51.Take(nil)
//	pins, err := wioterminal.NewPins(p.PORT)
//	clocks, err := samd51.NewClocks(p.GCLK)
//	sets, err := pins.Split()
//	lcd, backlight, err := sets.Display.Init(p.SERCOM[7], clocks, nil)
//	accel, err := sets.Accelerometer.Init(p.SERCOM[4], clocks)
//
// # Schematic
//
// https://files.seeedstudio.com/wiki/Wio-Terminal/res/Wio-Terminal-Schematics.pdf
package wioterminal
