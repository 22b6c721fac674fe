// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"fmt"

	"periph.io/x/wioterminal/samd51"
)

// Bundle names.
const (
	BundleFlash         = "Flash"
	BundleSDCard        = "SDCard"
	BundleUART          = "UART"
	BundleUSB           = "USB"
	BundleDisplay       = "Display"
	BundleAccelerometer = "Accelerometer"
	BundleBuzzer        = "Buzzer"
)

// bundles lists the pins moved into each bundle by Split.
var bundles = []struct {
	name string
	pins []string
}{
	{BundleFlash, []string{"MCU_FLASH_QSPI_CLK", "MCU_FLASH_QSPI_CS", "MCU_FLASH_QSPI_IO0", "MCU_FLASH_QSPI_IO1", "MCU_FLASH_QSPI_IO2", "MCU_FLASH_QSPI_IO3"}},
	{BundleSDCard, []string{"SD_CS", "SD_MOSI", "SD_SCK", "SD_MISO", "SD_DET"}},
	{BundleUART, []string{"TXD", "RXD"}},
	{BundleUSB, []string{"USB_DM", "USB_DP"}},
	{BundleDisplay, []string{"LCD_MISO", "LCD_MOSI", "LCD_SCK", "LCD_CS", "LCD_DC", "LCD_RESET", "LCD_BACKLIGHT"}},
	{BundleAccelerometer, []string{"I2C0_SCL", "I2C0_SDA"}},
	{BundleBuzzer, []string{"BUZZER_CTR"}},
}

// BundlePins returns the pin names Split moves into bundle name.
func BundlePins(name string) []string {
	for _, b := range bundles {
		if b.name == name {
			return append([]string(nil), b.pins...)
		}
	}
	return nil
}

// QSPIFlash holds the pins of the on-board QSPI flash.
type QSPIFlash struct {
	SCK *samd51.Pin
	CS  *samd51.Pin
	D0  *samd51.Pin
	D1  *samd51.Pin
	D2  *samd51.Pin
	D3  *samd51.Pin
}

// SDCard holds the pins of the micro SD card slot.
type SDCard struct {
	CS   *samd51.Pin
	MOSI *samd51.Pin
	SCK  *samd51.Pin
	MISO *samd51.Pin
	DET  *samd51.Pin
}

// UART holds the pins of the UART on the 40 pin header.
type UART struct {
	TX *samd51.Pin
	RX *samd51.Pin
}

// USB holds the pins of the USB-C connector.
type USB struct {
	DM *samd51.Pin
	DP *samd51.Pin
}

// Display holds the pins of the ILI9341 LCD.
type Display struct {
	MISO      *samd51.Pin
	MOSI      *samd51.Pin
	SCK       *samd51.Pin
	CS        *samd51.Pin
	DC        *samd51.Pin
	Reset     *samd51.Pin
	Backlight *samd51.Pin
}

// Accelerometer holds the pins of the internal I²C bus the LIS3DH is on.
type Accelerometer struct {
	SCL *samd51.Pin
	SDA *samd51.Pin
}

// Buzzer holds the pin driving the piezo buzzer.
type Buzzer struct {
	Ctr *samd51.Pin
}

// Sets is the board split into functional bundles. Pins that are in no
// bundle can still be taken individually.
type Sets struct {
	Flash         QSPIFlash
	SDCard        SDCard
	UART          UART
	USB           USB
	Display       Display
	Accelerometer Accelerometer
	Buzzer        Buzzer

	rest *Pins
}

// Split consumes the registry and moves the pins of every bundle into Sets.
//
// It is all or nothing: it fails with samd51.ErrTaken, without moving any
// pin, when the registry was already consumed or when a bundle pin was
// already taken.
func (p *Pins) Split() (*Sets, error) {
	if p.consumed {
		return nil, fmt.Errorf("%w: pins were already split", samd51.ErrTaken)
	}
	reserved := map[string]string{}
	for _, b := range bundles {
		for _, name := range b.pins {
			s, ok := p.cat.Lookup(name)
			if !ok {
				return nil, fmt.Errorf("wioterminal: %s bundle: unknown pin %q", b.name, name)
			}
			if owner, taken := p.port.Owner(s.ID); taken {
				return nil, fmt.Errorf("%w: %s bundle: %s(%s) is owned by %s", samd51.ErrTaken, b.name, name, s.ID, owner)
			}
			reserved[name] = b.name
		}
	}
	got := map[string]*samd51.Pin{}
	for _, b := range bundles {
		for _, name := range b.pins {
			pn, err := p.take(name)
			if err != nil {
				// Unreachable: ownership was checked above.
				return nil, err
			}
			got[name] = pn
		}
	}
	p.consumed = true
	return &Sets{
		Flash: QSPIFlash{
			SCK: got["MCU_FLASH_QSPI_CLK"],
			CS:  got["MCU_FLASH_QSPI_CS"],
			D0:  got["MCU_FLASH_QSPI_IO0"],
			D1:  got["MCU_FLASH_QSPI_IO1"],
			D2:  got["MCU_FLASH_QSPI_IO2"],
			D3:  got["MCU_FLASH_QSPI_IO3"],
		},
		SDCard: SDCard{
			CS:   got["SD_CS"],
			MOSI: got["SD_MOSI"],
			SCK:  got["SD_SCK"],
			MISO: got["SD_MISO"],
			DET:  got["SD_DET"],
		},
		UART: UART{TX: got["TXD"], RX: got["RXD"]},
		USB:  USB{DM: got["USB_DM"], DP: got["USB_DP"]},
		Display: Display{
			MISO:      got["LCD_MISO"],
			MOSI:      got["LCD_MOSI"],
			SCK:       got["LCD_SCK"],
			CS:        got["LCD_CS"],
			DC:        got["LCD_DC"],
			Reset:     got["LCD_RESET"],
			Backlight: got["LCD_BACKLIGHT"],
		},
		Accelerometer: Accelerometer{SCL: got["I2C0_SCL"], SDA: got["I2C0_SDA"]},
		Buzzer:        Buzzer{Ctr: got["BUZZER_CTR"]},
		rest:          &Pins{cat: p.cat, port: p.port, reserved: reserved},
	}, nil
}

// Take moves a pin that is in no bundle out of the sets, e.g. "USER_LED" or
// "BUTTON1".
//
// Bundle pins and pins already taken fail with samd51.ErrTaken. SWITCH_B
// shares PD12 with SD_DET and is therefore never available after a split.
func (s *Sets) Take(name string) (*samd51.Pin, error) {
	return s.rest.take(name)
}

// Port returns the PORT the pins belong to.
func (s *Sets) Port() *samd51.Port {
	return s.rest.port
}
