// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NumPorts is the number of PORT groups on the SAMD51P19A (A to D).
const NumPorts = 4

// NumPins is the number of addressable pin slots, including the ones not
// bonded out on the package.
const NumPins = NumPorts * 32

// ID identifies a physical pin by port group and number.
type ID uint8

// PinID returns the ID of pin num in group port ('A' to 'D').
func PinID(port byte, num int) ID {
	return ID(int(port-'A')<<5 | num&31)
}

// ParseID parses names like "PA15" or "PC5".
func ParseID(s string) (ID, error) {
	if len(s) < 3 || s[0] != 'P' {
		return 0, fmt.Errorf("samd51: invalid pin %q", s)
	}
	port := s[1]
	if port < 'A' || port >= 'A'+NumPorts {
		return 0, fmt.Errorf("samd51: invalid port in %q", s)
	}
	n, err := strconv.Atoi(s[2:])
	if err != nil || n < 0 || n > 31 {
		return 0, fmt.Errorf("samd51: invalid pin number in %q", s)
	}
	return PinID(port, n), nil
}

// Port returns the port group letter.
func (id ID) Port() byte {
	return 'A' + byte(id>>5)
}

// Num returns the pin number within the port group.
func (id ID) Num() int {
	return int(id & 31)
}

func (id ID) String() string {
	return fmt.Sprintf("P%c%02d", id.Port(), id.Num())
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	v, err := ParseID(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Mux is a PMUX peripheral function selector.
type Mux uint8

// Peripheral function groups, from the "I/O Multiplexing" table.
const (
	MuxA Mux = iota // EIC
	MuxB            // ADC, AC, DAC, PTC
	MuxC            // SERCOM
	MuxD            // SERCOM alternate
	MuxE            // TC
	MuxF            // TCC
	MuxG            // TCC, PDEC
	MuxH            // QSPI, USB, CCL
	MuxI            // SDHC, CAN
	MuxJ            // I2S
	MuxK            // PCC
	MuxL            // GMAC
	MuxM            // GCLK, AC
	MuxN            // CCL
)

func (m Mux) String() string {
	if m > MuxN {
		return "Mux(" + strconv.Itoa(int(m)) + ")"
	}
	return string(rune('A' + m))
}

// ParseMux parses a single function group letter.
func ParseMux(s string) (Mux, error) {
	if len(s) != 1 || s[0] < 'A' || s[0] > 'N' {
		return 0, fmt.Errorf("samd51: invalid function group %q", s)
	}
	return Mux(s[0] - 'A'), nil
}

var (
	// ErrTaken is returned when a singleton resource (a controller, the PORT, a
	// pin) is requested a second time, or when a consumed pin handle is used.
	ErrTaken = errors.New("samd51: resource already taken")
	// ErrClockUnavailable is returned when no generator can supply the
	// requested clock.
	ErrClockUnavailable = errors.New("samd51: clock unavailable")
	// ErrPad is returned when a pin cannot serve the requested signal.
	ErrPad = errors.New("samd51: invalid pad assignment")
	// ErrConfig is returned when a controller rejects its configuration.
	ErrConfig = errors.New("samd51: configuration rejected")
	// ErrTransfer is returned when a bound peripheral fails an operation.
	ErrTransfer = errors.New("samd51: transfer failed")
)
