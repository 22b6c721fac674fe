// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// wio-blinky blinks the Wio Terminal's user LED and beeps while the first
// top button is pressed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/wioterminal"
	"periph.io/x/wioterminal/bench"
	"periph.io/x/wioterminal/samd51"
)

func blink(ctx context.Context, led *samd51.Output, button *samd51.Input, buzzer *samd51.PWM, period time.Duration) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return led.Out(gpio.Low)
		case <-t.C:
		}
		if err := led.Toggle(); err != nil {
			return err
		}
		pressed := button.Read() == gpio.Low
		if pressed == buzzer.Enabled() {
			continue
		}
		log.Printf("button pressed: %t", pressed)
		var err error
		if pressed {
			err = buzzer.Enable()
		} else {
			err = buzzer.Disable()
		}
		if err != nil {
			return err
		}
	}
}

// silence stops the buzzer, which starts running when bound, and sets the
// duty cycle used while the button is held.
func silence(buzzer *samd51.PWM) error {
	if err := buzzer.Disable(); err != nil {
		return err
	}
	return buzzer.SetDuty(gpio.DutyHalf)
}

func mainImpl() error {
	config := flag.String("config", "bench.yaml", "bench configuration file")
	list := flag.Bool("list", false, "list the serial devices and exit")
	period := flag.Duration("period", 500*time.Millisecond, "half period of the blink")
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
	if *period <= 0 {
		return errors.New("-period must be positive")
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
	pin, err := sets.Take("USER_LED")
	if err != nil {
		return err
	}
	led, err := pin.IntoPushPullOutput()
	if err != nil {
		return err
	}
	if pin, err = sets.Take("BUTTON1"); err != nil {
		return err
	}
	button, err := pin.IntoPullUpInput()
	if err != nil {
		return err
	}
	buzzer := sets.Buzzer.Init(p.TCC[0], clocks)
	if err := silence(buzzer); err != nil {
		return err
	}
	defer buzzer.Disable()
	log.Printf("%s on %s, %s", led, sets.Port().Func(samd51.PinID('A', 15)), buzzer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return blink(ctx, led, button, buzzer, *period)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "wio-blinky: %s.\n", err)
		os.Exit(1)
	}
}
