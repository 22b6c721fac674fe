// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package samd51

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spitest"
)

func TestNewSPI(t *testing.T) {
	port := &connectRecorder{Playback: spitest.Playback{
		Playback: conntest.Playback{
			Ops: []conntest.IO{
				{W: []byte{0x04, 0, 0, 0}, R: []byte{0, 0x00, 0x93, 0x41}},
				{W: []byte{0x2C}},
			},
		},
	}}
	b := newBench(t, &Wiring{SPI: map[int]spi.Port{7: port}})
	pads := b.displayPads()
	s, err := NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.Mode0)
	if err != nil {
		t.Fatal(err)
	}
	if f := s.Frequency(); f != 20*physic.MegaHertz {
		t.Fatalf("Frequency() = %s", f)
	}
	if s.Baud() != 2 {
		t.Fatalf("Baud() = %d", s.Baud())
	}
	if dopo, dipo := s.Pads(); dopo != 2 || dipo != 2 {
		t.Fatalf("Pads() = %d, %d", dopo, dipo)
	}
	if port.f != 20*physic.MegaHertz || port.mode != spi.Mode0 || port.bits != 8 {
		t.Fatalf("Connect(%s, %s, %d)", port.f, port.mode, port.bits)
	}
	if g, ok := b.c.Source(ChannelSERCOM7Core); !ok || g != GCLK0 {
		t.Fatal(g, ok)
	}
	if r := b.p.SERCOM[7].Role(); r != "SPI" {
		t.Fatal(r)
	}
	if f := b.port.Func(PinID('B', 20)); f != "SERCOM7_PAD1" {
		t.Fatalf("SCK function = %s", f)
	}

	r := make([]byte, 4)
	if err := s.Tx([]byte{0x04, 0, 0, 0}, r); err != nil {
		t.Fatal(err)
	}
	if r[2] != 0x93 || r[3] != 0x41 {
		t.Fatalf("read %#v", r)
	}
	if err := s.Tx([]byte{0x2C}, nil); err != nil {
		t.Fatal(err)
	}
	if err := port.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Tx([]byte{1, 2}, []byte{1}); err == nil {
		t.Fatal("mismatched buffers")
	}

	// The controller and pins are owned by s.
	if _, err := NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrTaken) {
		t.Fatalf("NewSPI() = %v", err)
	}
}

func TestNewSPI_unwired(t *testing.T) {
	b := newBench(t, nil)
	s, err := NewSPI(b.p.SERCOM[7], b.c, b.displayPads(), 7*physic.MegaHertz, spi.Mode3)
	if err != nil {
		t.Fatal(err)
	}
	if s.Baud() != 8 || s.Mode() != spi.Mode3 {
		t.Fatal(s.Baud(), s.Mode())
	}
	if _, err := s.Transfer(0x55); !errors.Is(err, ErrTransfer) {
		t.Fatalf("Transfer() = %v", err)
	}
}

func TestNewSPI_writeOnly(t *testing.T) {
	b := newBench(t, nil)
	pads := b.displayPads()
	pads.MISO = nil
	s, err := NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.Mode0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Tx([]byte{1}, []byte{0}); !errors.Is(err, ErrTransfer) {
		t.Fatalf("Tx() = %v", err)
	}
}

func TestNewSPI_errors(t *testing.T) {
	b := newBench(t, nil)
	pads := b.displayPads()

	// SCK on PAD0.
	swapped := SPIPads{MISO: pads.MISO, MOSI: pads.MOSI, SCK: b.pin(PinID('B', 21), "LCD_CS", MuxD, "SERCOM7_PAD0")}
	if _, err := NewSPI(b.p.SERCOM[7], b.c, swapped, 20*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrPad) {
		t.Fatalf("NewSPI() = %v", err)
	}
	// MOSI on PAD2.
	if _, err := NewSPI(b.p.SERCOM[7], b.c, SPIPads{MOSI: pads.MISO, SCK: pads.SCK}, 20*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrPad) {
		t.Fatalf("NewSPI() = %v", err)
	}
	// Pins without the SERCOM.
	if _, err := NewSPI(b.p.SERCOM[6], b.c, pads, 20*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrPad) {
		t.Fatalf("NewSPI() = %v", err)
	}
	if _, err := NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.HalfDuplex); !errors.Is(err, ErrConfig) {
		t.Fatalf("NewSPI() = %v", err)
	}
	if _, err := NewSPI(b.p.SERCOM[7], b.c, pads, 100*physic.KiloHertz, spi.Mode0); !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("NewSPI() = %v", err)
	}
	// Nothing was consumed by the failures.
	if f := pads.SCK.Func(); f == pin.FuncNone {
		t.Fatal("SCK handle went stale")
	}
	if _, err := NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.Mode0); err != nil {
		t.Fatal(err)
	}
	// The pins were moved.
	if _, err := NewSPI(b.p.SERCOM[5], b.c, pads, 20*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrTaken) {
		t.Fatalf("NewSPI() = %v", err)
	}
}

// Two fresh chips bound the same way run at the same rates.
func TestNewSPI_deterministic(t *testing.T) {
	var got [2]physic.Frequency
	for i := range got {
		b := newBench(t, nil)
		s, err := NewSPI(b.p.SERCOM[7], b.c, b.displayPads(), 13*physic.MegaHertz, spi.Mode0)
		if err != nil {
			t.Fatal(err)
		}
		got[i] = s.Frequency()
	}
	if got[0] != got[1] || got[0] > 13*physic.MegaHertz {
		t.Fatal(got)
	}
}

func TestSPI_Unbind(t *testing.T) {
	port := &connectRecorder{Playback: spitest.Playback{
		Playback: conntest.Playback{Ops: []conntest.IO{{W: []byte{0x2C}}}},
	}}
	b := newBench(t, &Wiring{SPI: map[int]spi.Port{7: port}})
	s, err := NewSPI(b.p.SERCOM[7], b.c, b.displayPads(), 20*physic.MegaHertz, spi.Mode0)
	if err != nil {
		t.Fatal(err)
	}
	pads, err := s.Unbind()
	if err != nil {
		t.Fatal(err)
	}
	if r := b.p.SERCOM[7].Role(); r != "" {
		t.Fatal(r)
	}
	if pads.MISO == nil || pads.MOSI == nil || pads.SCK == nil {
		t.Fatalf("%+v", pads)
	}
	if err := s.Tx([]byte{0x2C}, nil); !errors.Is(err, ErrTaken) {
		t.Fatalf("Tx() = %v", err)
	}
	if _, err := s.Unbind(); !errors.Is(err, ErrTaken) {
		t.Fatalf("Unbind() = %v", err)
	}

	// The host port stays connected; only the same rate and mode rebind.
	if _, err := NewSPI(b.p.SERCOM[7], b.c, pads, 10*physic.MegaHertz, spi.Mode0); !errors.Is(err, ErrConfig) {
		t.Fatalf("NewSPI() = %v", err)
	}
	s, err = NewSPI(b.p.SERCOM[7], b.c, pads, 20*physic.MegaHertz, spi.Mode0)
	if err != nil {
		t.Fatal(err)
	}
	if port.calls != 1 {
		t.Fatalf("Connect called %d times", port.calls)
	}
	if err := s.Tx([]byte{0x2C}, nil); err != nil {
		t.Fatal(err)
	}
	if err := port.Close(); err != nil {
		t.Fatal(err)
	}
}

//

// bench is a fresh chip with its PORT and clocks claimed.
type bench struct {
	t    *testing.T
	p    *Peripherals
	port *Port
	c    *Clocks
}

func newBench(t *testing.T, w *Wiring) *bench {
	p := New(w)
	port, err := p.PORT.Claim()
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClocks(p.GCLK)
	if err != nil {
		t.Fatal(err)
	}
	return &bench{t: t, p: p, port: port, c: c}
}

func (b *bench) pin(id ID, name string, kv ...interface{}) *Pin {
	funcs := map[Mux]pin.Func{}
	for i := 0; i < len(kv); i += 2 {
		funcs[kv[i].(Mux)] = pin.Func(kv[i+1].(string))
	}
	p, err := b.port.Claim(id, name, funcs)
	if err != nil {
		b.t.Fatal(err)
	}
	return p
}

// displayPads returns the LCD bus pins.
func (b *bench) displayPads() SPIPads {
	return SPIPads{
		MISO: b.pin(PinID('B', 18), "LCD_MISO", MuxC, "SERCOM5_PAD2", MuxD, "SERCOM7_PAD2"),
		MOSI: b.pin(PinID('B', 19), "LCD_MOSI", MuxC, "SERCOM5_PAD3", MuxD, "SERCOM7_PAD3"),
		SCK:  b.pin(PinID('B', 20), "LCD_SCK", MuxC, "SERCOM3_PAD0", MuxD, "SERCOM7_PAD1"),
	}
}

// connectRecorder records the Connect arguments.
type connectRecorder struct {
	spitest.Playback
	f     physic.Frequency
	mode  spi.Mode
	bits  int
	calls int
}

func (c *connectRecorder) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	c.calls++
	c.f, c.mode, c.bits = f, mode, bits
	return c.Playback.Connect(f, mode, bits)
}
