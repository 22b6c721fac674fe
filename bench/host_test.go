// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package bench

import (
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/wioterminal"
	"periph.io/x/wioterminal/samd51"
)

var (
	benchSPI = &spitest.Playback{}
	benchI2C = &i2ctest.Playback{}
	benchLED = &gpiotest.Pin{N: "BENCH_LED", Num: -1}
)

func init() {
	if err := spireg.Register("BENCH_SPI", nil, -1, func() (spi.PortCloser, error) { return benchSPI, nil }); err != nil {
		panic(err)
	}
	if err := i2creg.Register("BENCH_I2C", nil, -1, func() (i2c.BusCloser, error) { return benchI2C, nil }); err != nil {
		panic(err)
	}
	if err := gpioreg.Register(benchLED); err != nil {
		panic(err)
	}
}

func TestOpen(t *testing.T) {
	cfg, err := Parse([]byte(`
spi:
  7: {port: BENCH_SPI, max_speed: 4MHz}
i2c:
  4: {bus: BENCH_I2C}
uart:
  2: {device: /dev/null}
lines:
  USER_LED: BENCH_LED
`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			t.Fatal(err)
		}
	}()
	if b.Wiring.SPI[7] != benchSPI || b.Wiring.I2C[4] != benchI2C {
		t.Fatalf("%+v", b.Wiring)
	}
	if s := b.Wiring.UART[2].String(); s != "/dev/null" {
		t.Fatal(s)
	}

	// The configured line follows the board's LED.
	p := samd51.New(b.Wiring)
	pins, err := wioterminal.NewPins(p.PORT)
	if err != nil {
		t.Fatal(err)
	}
	led, err := pins.Take("USER_LED")
	if err != nil {
		t.Fatal(err)
	}
	out, err := led.IntoPushPullOutput()
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if benchLED.Read() != gpio.High {
		t.Fatal("line not driven")
	}
}

func TestOpen_ftdi(t *testing.T) {
	b, err := Open(&Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	var names []string
	for _, d := range b.State.Loaded {
		names = append(names, d.String())
	}
	for _, f := range append(b.State.Skipped, b.State.Failed...) {
		names = append(names, f.D.String())
	}
	for _, n := range names {
		if n == "ftdi" {
			return
		}
	}
	t.Fatalf("ftdi driver not registered: %v", names)
}

func TestOpen_missing(t *testing.T) {
	data := []string{
		"spi:\n  7: {port: NO_SUCH_SPI}",
		"i2c:\n  4: {bus: NO_SUCH_I2C}",
		"lines:\n  USER_LED: NO_SUCH_GPIO",
	}
	for _, in := range data {
		cfg, err := Parse([]byte(in))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := open(cfg); err == nil {
			t.Fatalf("open(%q) succeeded", in)
		}
	}
}
