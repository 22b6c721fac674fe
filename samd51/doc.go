// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package samd51 models the parts of the Microchip SAMD51 that a board
// support package binds peripherals against: the PORT controller and its pins,
// the generic clock generators, and the SERCOM, TCC and USB controllers.
//
// Every resource is exclusively owned. Controllers are claimed once, and pin
// handles are consumed by each role transfer: the handle passed to an Into*
// method or to a binder becomes stale and any further use of it returns
// ErrTaken.
//
// Binders (NewSPI, NewI2C, NewUART, NewPWM, NewUSB) validate pad routing and
// clocking before they move any pin, so a failed bind leaves the caller's pins
// usable. SPI and I2C hosts can be unbound again to give the pins back when the
// device behind them does not answer.
//
// The register state is kept in memory. Transfers are forwarded to the buses
// and lines given in Wiring, which lets a host bench (FT232H, USB serial
// adapter, ...) stand in for the real silicon.
//
// Use build tag periph_wio_debug to enable verbose debugging.
//
// # Datasheet
//
// https://ww1.microchip.com/downloads/en/DeviceDoc/SAM_D5x_E5x_Family_Data_Sheet_DS60001507G.pdf
package samd51
