// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/wioterminal/samd51"
)

// SDBus is the micro SD slot bound to its SPI host. The card protocol is
// left to the caller.
type SDBus struct {
	SPI *samd51.SPI
	CS  *samd51.Output
	DET *samd51.Input
}

// Init binds s as the SD card SPI host in mode 0 at up to f, deselects the
// card and enables the pull-up on the card detect switch. s is SERCOM6 on the
// board. Use SDFrequency until the card is initialized.
//
// On failure s is released and the pins are returned to sd.
func (sd *SDCard) Init(s *samd51.Sercom, c *samd51.Clocks, f physic.Frequency) (_ *SDBus, err error) {
	bus, err := samd51.NewSPI(s, c, samd51.SPIPads{MISO: sd.MISO, MOSI: sd.MOSI, SCK: sd.SCK}, f, spi.Mode0)
	if err != nil {
		return nil, err
	}
	var cs *samd51.Output
	defer func() {
		if err == nil {
			return
		}
		giveBack(&sd.CS, cs)
		if pads, e := bus.Unbind(); e == nil {
			sd.MISO, sd.MOSI, sd.SCK = pads.MISO, pads.MOSI, pads.SCK
		}
	}()
	if cs, err = sd.CS.IntoPushPullOutput(); err != nil {
		return nil, err
	}
	if err = cs.Out(gpio.High); err != nil {
		return nil, err
	}
	det, err := sd.DET.IntoPullUpInput()
	if err != nil {
		return nil, err
	}
	return &SDBus{SPI: bus, CS: cs, DET: det}, nil
}

func (b *SDBus) String() string {
	return fmt.Sprintf("SD{%s}", b.SPI)
}

// Inserted reports whether a card is in the slot. The detect switch closes
// to ground when a card is present.
func (b *SDBus) Inserted() bool {
	return b.DET.Read() == gpio.Low
}
