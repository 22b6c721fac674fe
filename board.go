// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"errors"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/wioterminal/samd51"
	"tinygo.org/x/drivers/lis3dh"
)

// Default peripheral parameters.
const (
	// DisplayFrequency is the LCD SPI clock.
	DisplayFrequency = 20 * physic.MegaHertz
	// DisplayMode is the LCD SPI mode: clock idles low, data is sampled on
	// the rising edge.
	DisplayMode = spi.Mode0
	// AccelFrequency is the internal I²C bus clock.
	AccelFrequency = 400 * physic.KiloHertz
	// AccelAddress is the LIS3DH address; SA0 is pulled high on the board.
	AccelAddress = lis3dh.Address1
	// BuzzerFrequency is the buzzer PWM frequency.
	BuzzerFrequency = physic.KiloHertz
	// SDFrequency is the SD card SPI clock during initialization.
	SDFrequency = 400 * physic.KiloHertz
)

// ErrInit is returned when a device on the board does not answer during
// initialization. It wraps the cause.
var ErrInit = errors.New("wioterminal: peripheral initialization failed")

// giveBack returns o, an output made from *p during a failed Init, to *p.
// Nothing happens when o is nil.
func giveBack(p **samd51.Pin, o *samd51.Output) {
	if o == nil {
		return
	}
	if q, err := o.IntoFloatingInput(); err == nil {
		*p = q
	}
}
