// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// USBFrequency is the clock the full-speed USB controller requires.
const USBFrequency = 48 * physic.MegaHertz

// USB is the full-speed USB controller with its clock and data pins set up.
// The device stack itself is not modeled.
type USB struct {
	u  *USBController
	dm *Alt
	dp *Alt
	g  Generator
}

// NewUSB clocks u from a 48MHz generator allocated to PurposeUSB and moves dm
// and dp into USB_DM and USB_DP.
func NewUSB(u *USBController, c *Clocks, dm, dp *Pin) (*USB, error) {
	if u.bound {
		return nil, fmt.Errorf("%w: %s", ErrTaken, u)
	}
	rdm, err := funcRoute(dm, "USB_DM")
	if err != nil {
		return nil, err
	}
	rdp, err := funcRoute(dp, "USB_DP")
	if err != nil {
		return nil, err
	}
	g, err := c.Acquire(PurposeUSB, USBFrequency)
	if err != nil {
		return nil, err
	}
	f, err := c.Enable(ChannelUSB, g)
	if err != nil {
		return nil, err
	}
	if f != USBFrequency {
		return nil, fmt.Errorf("%w: USB needs %s, %s runs at %s", ErrClockUnavailable, USBFrequency, g, f)
	}
	alts, err := commit(rdm, rdp)
	if err != nil {
		return nil, err
	}
	u.bound = true
	logf("samd51: USB <- %s", g)
	return &USB{u: u, dm: alts[0], dp: alts[1], g: g}, nil
}

func (u *USB) String() string {
	return u.u.String()
}

// Generator returns the generator clocking the controller.
func (u *USB) Generator() Generator {
	return u.g
}
