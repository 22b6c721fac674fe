// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"periph.io/x/wioterminal/samd51"
)

// Init drives the buzzer from t at BuzzerFrequency, silent until a duty cycle
// is set. t is TCC0 on the board; the pin is its waveform output 4.
//
// Like samd51.NewPWM it panics when t or the pin was already taken.
func (b *Buzzer) Init(t *samd51.TCC, c *samd51.Clocks) *samd51.PWM {
	return samd51.NewPWM(t, c, b.Ctr, BuzzerFrequency)
}
