// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// wio-orientation keeps the Wio Terminal's display upright as the board is
// turned.
//
// The chip's controllers are mirrored by host adapters described in a bench
// configuration file; see package bench.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/wioterminal"
	"periph.io/x/wioterminal/bench"
	"periph.io/x/wioterminal/ili9341"
	"periph.io/x/wioterminal/orientation"
	"periph.io/x/wioterminal/samd51"
)

func mainImpl() error {
	config := flag.String("config", "bench.yaml", "bench configuration file")
	list := flag.Bool("list", false, "list the serial devices and exit")
	threshold := flag.Int("threshold", orientation.DefaultThreshold, "raw reading above which an axis carries gravity")
	interval := flag.Duration("interval", orientation.DefaultInterval, "accelerometer polling period")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *list {
		ports, err := bench.Ports()
		if err != nil {
			return err
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return nil
	}

	cfg, err := bench.Load(*config)
	if err != nil {
		return err
	}
	b, err := bench.Open(cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	for _, f := range b.State.Failed {
		log.Printf("driver %s failed: %v", f.D, f.Err)
	}

	p, err := samd51.Take(b.Wiring)
	if err != nil {
		return err
	}
	pins, err := wioterminal.NewPins(p.PORT)
	if err != nil {
		return err
	}
	clocks, err := samd51.NewClocks(p.GCLK)
	if err != nil {
		return err
	}
	sets, err := pins.Split()
	if err != nil {
		return err
	}
	accel, err := sets.Accelerometer.Init(p.SERCOM[4], clocks)
	if err != nil {
		return err
	}
	lcd, backlight, err := sets.Display.Init(p.SERCOM[7], clocks, nil)
	if err != nil {
		return err
	}
	log.Printf("%s, %s", accel, lcd)

	redraw := func() error {
		log.Printf("orientation %s", lcd.Orientation())
		if err := lcd.FillRect(lcd.Bounds(), color.Black); err != nil {
			return err
		}
		// A bar along the top edge shows which way is up.
		return lcd.FillRect(image.Rect(0, 0, lcd.Width(), 16), ili9341.RGB565(0x07E0))
	}
	if err := redraw(); err != nil {
		return err
	}

	a := orientation.New(accel, lcd, redraw, &orientation.Opts{
		Threshold: int32(*threshold),
		Interval:  *interval,
	})
	s, err := a.Baseline()
	if err != nil {
		return err
	}
	log.Printf("baseline %s", s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return run(ctx, a, lcd, backlight)
}

// run adapts the display until ctx is done or the loop fails, then turns the
// backlight off.
func run(ctx context.Context, a *orientation.Adapter, lcd conn.Resource, backlight gpio.PinOut) error {
	start := time.Now()
	err := a.Run(ctx)
	log.Printf("ran for %s", time.Since(start))
	if errors.Is(err, context.Canceled) {
		err = lcd.Halt()
	}
	return errors.Join(err, backlight.Out(gpio.Low))
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "wio-orientation: %s.\n", err)
		os.Exit(1)
	}
}
