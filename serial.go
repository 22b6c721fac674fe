// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"periph.io/x/conn/v3/physic"
	"periph.io/x/wioterminal/samd51"
)

// Init binds s as the header UART at baud, 8N1. s is SERCOM2 on the board.
func (u *UART) Init(s *samd51.Sercom, c *samd51.Clocks, baud physic.Frequency) (*samd51.UART, error) {
	return samd51.NewUART(s, c, samd51.UARTPads{TX: u.TX, RX: u.RX}, baud)
}

// Init clocks the USB controller at 48MHz and routes the data lines to it.
func (u *USB) Init(ctrl *samd51.USBController, c *samd51.Clocks) (*samd51.USB, error) {
	return samd51.NewUSB(ctrl, c, u.DM, u.DP)
}
