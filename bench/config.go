// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bench

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/wioterminal"
	"periph.io/x/wioterminal/samd51"
)

// Config describes which host resources mirror the chip's controllers and
// pins.
//
// Example:
//
//	spi:
//	  7: {port: "SPI0.0", max_speed: 10MHz}
//	i2c:
//	  4: {bus: "1"}
//	uart:
//	  2: {device: /dev/ttyUSB0}
//	lines:
//	  USER_LED: GPIO17
//	  PC26: GPIO27
type Config struct {
	SPI   map[int]SPIWire   `yaml:"spi"`
	I2C   map[int]I2CWire   `yaml:"i2c"`
	UART  map[int]UARTWire  `yaml:"uart"`
	Lines map[string]string `yaml:"lines"`
}

// SPIWire is a host SPI port carrying a SERCOM's SPI traffic.
type SPIWire struct {
	// Port is the spireg name, alias or number. Empty selects the default.
	Port string `yaml:"port"`
	// MaxSpeed optionally caps the port, e.g. "10MHz".
	MaxSpeed string `yaml:"max_speed"`

	maxSpeed physic.Frequency
}

// I2CWire is a host I²C bus carrying a SERCOM's I²C traffic.
type I2CWire struct {
	// Bus is the i2creg name, alias or number. Empty selects the default.
	Bus string `yaml:"bus"`
}

// UARTWire is a host serial device carrying a SERCOM's USART traffic.
type UARTWire struct {
	Device string `yaml:"device"`
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a configuration.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("bench: invalid config: %w", err)
	}
	for _, idx := range sortedKeys(c.SPI) {
		w := c.SPI[idx]
		if err := checkSercom(idx); err != nil {
			return nil, err
		}
		if w.MaxSpeed != "" {
			if err := w.maxSpeed.Set(w.MaxSpeed); err != nil {
				return nil, fmt.Errorf("bench: spi %d: max_speed: %w", idx, err)
			}
			c.SPI[idx] = w
		}
	}
	for idx := range c.I2C {
		if err := checkSercom(idx); err != nil {
			return nil, err
		}
	}
	for idx, w := range c.UART {
		if err := checkSercom(idx); err != nil {
			return nil, err
		}
		if w.Device == "" {
			return nil, fmt.Errorf("bench: uart %d: device is required", idx)
		}
	}
	for _, idx := range sortedKeys(c.SPI) {
		if _, ok := c.I2C[idx]; ok {
			return nil, fmt.Errorf("bench: SERCOM%d is wired both as SPI and I²C", idx)
		}
	}
	if _, err := c.lines(); err != nil {
		return nil, err
	}
	return c, nil
}

// lines resolves the keys of Lines, either a pin like "PA15" or a board pin
// name like "USER_LED".
func (c *Config) lines() (map[samd51.ID]string, error) {
	if len(c.Lines) == 0 {
		return nil, nil
	}
	cat, err := wioterminal.LoadCatalog()
	if err != nil {
		return nil, err
	}
	out := make(map[samd51.ID]string, len(c.Lines))
	for k, v := range c.Lines {
		id, err := samd51.ParseID(k)
		if err != nil {
			s, ok := cat.Lookup(k)
			if !ok {
				return nil, fmt.Errorf("bench: lines: unknown pin %q", k)
			}
			id = s.ID
		}
		if prev, ok := out[id]; ok {
			return nil, fmt.Errorf("bench: lines: %s is wired to both %s and %s", id, prev, v)
		}
		out[id] = v
	}
	return out, nil
}

func checkSercom(idx int) error {
	if idx < 0 || idx >= samd51.NumSercom {
		return fmt.Errorf("bench: no SERCOM%d", idx)
	}
	return nil
}

func sortedKeys[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
