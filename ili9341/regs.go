// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

// Commands.
const (
	cmdSWRESET  = 0x01
	cmdRDDID    = 0x04
	cmdSLPOUT   = 0x11
	cmdGAMMASET = 0x26
	cmdDISPOFF  = 0x28
	cmdDISPON   = 0x29
	cmdCASET    = 0x2A
	cmdPASET    = 0x2B
	cmdRAMWR    = 0x2C
	cmdMADCTL   = 0x36
	cmdPIXFMT   = 0x3A
	cmdFRMCTR1  = 0xB1
	cmdDFUNCTR  = 0xB6
	cmdPWCTR1   = 0xC0
	cmdPWCTR2   = 0xC1
	cmdVMCTR1   = 0xC5
	cmdVMCTR2   = 0xC7
	cmdGMCTRP1  = 0xE0
	cmdGMCTRN1  = 0xE1
)

// MADCTL bits.
const (
	madMY  = 0x80 // row address order
	madMX  = 0x40 // column address order
	madMV  = 0x20 // row/column exchange
	madBGR = 0x08
)

// initCmds is the power and gamma setup, each entry a command followed by its
// parameters.
var initCmds = [][]byte{
	{cmdPWCTR1, 0x23},
	{cmdPWCTR2, 0x10},
	{cmdVMCTR1, 0x3E, 0x28},
	{cmdVMCTR2, 0x86},
	{cmdPIXFMT, 0x55}, // 16 bits per pixel
	{cmdFRMCTR1, 0x00, 0x18},
	{cmdDFUNCTR, 0x08, 0x82, 0x27},
	{cmdGAMMASET, 0x01},
	{cmdGMCTRP1, 0x0F, 0x31, 0x2B, 0x0C, 0x0E, 0x08, 0x4E, 0xF1, 0x37, 0x07, 0x10, 0x03, 0x0E, 0x09, 0x00},
	{cmdGMCTRN1, 0x00, 0x0E, 0x14, 0x03, 0x11, 0x07, 0x31, 0xC1, 0x48, 0x08, 0x0F, 0x0C, 0x31, 0x36, 0x0F},
}
