// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ili9341 drives the ILI9341 240x320 TFT controller over a 4-wire SPI
// bus with a separate data/command line.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/ILI9341.pdf
package ili9341

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// Native panel size, in portrait.
const (
	Width  = 240
	Height = 320
)

// Orientation is the scan direction of the panel.
type Orientation uint8

// Orientations. The zero value is Portrait.
const (
	Portrait Orientation = iota
	Landscape
	PortraitFlipped
	LandscapeFlipped
)

var orientationNames = [...]string{"Portrait", "Landscape", "PortraitFlipped", "LandscapeFlipped"}

func (o Orientation) String() string {
	if int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// madctl returns the memory access control value, BGR panel.
func (o Orientation) madctl() byte {
	switch o {
	case Landscape:
		return madMV | madBGR
	case PortraitFlipped:
		return madMY | madBGR
	case LandscapeFlipped:
		return madMX | madMY | madMV | madBGR
	default:
		return madMX | madBGR
	}
}

func (o Orientation) landscape() bool {
	return o == Landscape || o == LandscapeFlipped
}

// ErrNotDetected is returned when the controller does not answer the
// identification read.
var ErrNotDetected = errors.New("ili9341: display not detected")

// Opts holds the options of the driver.
type Opts struct {
	// Clock times the reset and wake-up delays. Defaults to the real clock.
	Clock clockwork.Clock
}

// Dev is an open ILI9341 display.
//
// Dev implements display.Drawer and drivers.Displayer. SetPixel draws
// immediately; the first error it hits is returned by the next Display call.
type Dev struct {
	c   spi.Conn
	cs  gpio.PinOut
	dc  gpio.PinOut
	rst gpio.PinOut
	clk clockwork.Clock

	id     [3]byte
	orient Orientation
	err    error
}

// New resets the controller, checks that it answers and turns the display on,
// in portrait.
//
// cs and rst may be nil when the lines are tied on the board.
func New(c spi.Conn, cs, dc, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	clk := opts.Clock
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	d := &Dev{c: c, cs: cs, dc: dc, rst: rst, clk: clk}
	if err := d.reset(); err != nil {
		return nil, err
	}
	if err := d.readID(); err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ili9341{%s}", d.c)
}

// Halt implements conn.Resource. It turns the display off.
func (d *Dev) Halt() error {
	return d.command(cmdDISPOFF)
}

// ID returns the three identification bytes read at initialization.
func (d *Dev) ID() [3]byte {
	return d.id
}

// SetOrientation rotates the display.
func (d *Dev) SetOrientation(o Orientation) error {
	if o > LandscapeFlipped {
		return fmt.Errorf("ili9341: invalid orientation %d", o)
	}
	if err := d.command(cmdMADCTL, o.madctl()); err != nil {
		return err
	}
	d.orient = o
	return nil
}

// SetRotation sets the orientation from a clockwise rotation of the portrait
// layout. Mirrored rotations are not supported.
func (d *Dev) SetRotation(r drivers.Rotation) error {
	if r > drivers.Rotation270 {
		return fmt.Errorf("ili9341: unsupported rotation %d", r)
	}
	return d.SetOrientation(Orientation(r))
}

// Rotation returns the current orientation as a clockwise rotation.
func (d *Dev) Rotation() drivers.Rotation {
	return drivers.Rotation(d.orient)
}

// Orientation returns the current orientation.
func (d *Dev) Orientation() Orientation {
	return d.orient
}

// Width returns the width in the current orientation.
func (d *Dev) Width() int {
	if d.orient.landscape() {
		return Height
	}
	return Width
}

// Height returns the height in the current orientation.
func (d *Dev) Height() int {
	if d.orient.landscape() {
		return Width
	}
	return Height
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return RGB565Model
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width(), d.Height())
}

// Draw implements display.Drawer.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	r := dstRect.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(dstRect.Min))
	if u, ok := src.(*image.Uniform); ok {
		return d.FillRect(r, u.C)
	}
	buf := make([]byte, 0, 2*r.Dx()*r.Dy())
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := RGB565Model.Convert(src.At(sp.X+x, sp.Y+y)).(RGB565)
			buf = append(buf, byte(c>>8), byte(c))
		}
	}
	return d.writeRect(r, buf)
}

// FillRect fills r with c.
func (d *Dev) FillRect(r image.Rectangle, c color.Color) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	v := RGB565Model.Convert(c).(RGB565)
	buf := make([]byte, 2*r.Dx()*r.Dy())
	for i := 0; i < len(buf); i += 2 {
		buf[i], buf[i+1] = byte(v>>8), byte(v)
	}
	return d.writeRect(r, buf)
}

// Size implements drivers.Displayer.
func (d *Dev) Size() (x, y int16) {
	return int16(d.Width()), int16(d.Height())
}

// SetPixel implements drivers.Displayer.
func (d *Dev) SetPixel(x, y int16, c color.RGBA) {
	if d.err != nil {
		return
	}
	r := image.Rect(int(x), int(y), int(x)+1, int(y)+1)
	if !r.In(d.Bounds()) {
		return
	}
	v := RGB565Model.Convert(c).(RGB565)
	d.err = d.writeRect(r, []byte{byte(v >> 8), byte(v)})
}

// Display implements drivers.Displayer.
//
// Pixels are written as they are set; Display only reports the first error.
func (d *Dev) Display() error {
	err := d.err
	d.err = nil
	return err
}

//

// maxTxSize is the largest SPI transfer.
const maxTxSize = 4096

func (d *Dev) reset() error {
	if d.rst == nil {
		return d.command(cmdSWRESET)
	}
	for _, s := range []struct {
		l     gpio.Level
		delay time.Duration
	}{
		{gpio.High, 5 * time.Millisecond},
		{gpio.Low, 20 * time.Millisecond},
		{gpio.High, 150 * time.Millisecond},
	} {
		if err := d.rst.Out(s.l); err != nil {
			return err
		}
		d.clk.Sleep(s.delay)
	}
	return nil
}

// readID reads RDDID. A floating MISO reads all ones, a missing panel all
// zeros.
func (d *Dev) readID() error {
	if err := d.selectChip(); err != nil {
		return err
	}
	defer d.deselect()
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmdRDDID}, nil); err != nil {
		return err
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	// The first byte is a dummy clock cycle.
	var r [4]byte
	if err := d.c.Tx(make([]byte, len(r)), r[:]); err != nil {
		return err
	}
	copy(d.id[:], r[1:])
	if d.id == [3]byte{} || d.id == [3]byte{0xFF, 0xFF, 0xFF} {
		return fmt.Errorf("%w: id %02x", ErrNotDetected, d.id)
	}
	return nil
}

func (d *Dev) init() error {
	if err := d.command(cmdSWRESET); err != nil {
		return err
	}
	d.clk.Sleep(5 * time.Millisecond)
	for _, c := range initCmds {
		if err := d.command(c[0], c[1:]...); err != nil {
			return err
		}
	}
	if err := d.command(cmdSLPOUT); err != nil {
		return err
	}
	d.clk.Sleep(120 * time.Millisecond)
	if err := d.SetOrientation(Portrait); err != nil {
		return err
	}
	return d.command(cmdDISPON)
}

func (d *Dev) writeRect(r image.Rectangle, pixels []byte) error {
	x0, x1 := uint16(r.Min.X), uint16(r.Max.X-1)
	y0, y1 := uint16(r.Min.Y), uint16(r.Max.Y-1)
	if err := d.command(cmdCASET, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := d.command(cmdPASET, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return d.command(cmdRAMWR, pixels...)
}

// command sends c followed by its parameters, in chunks of at most maxTxSize.
func (d *Dev) command(c byte, data ...byte) error {
	if err := d.selectChip(); err != nil {
		return err
	}
	defer d.deselect()
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{c}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) != 0 {
		n := len(data)
		if n > maxTxSize {
			n = maxTxSize
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (d *Dev) selectChip() error {
	if d.cs == nil {
		return nil
	}
	return d.cs.Out(gpio.Low)
}

func (d *Dev) deselect() {
	if d.cs != nil {
		_ = d.cs.Out(gpio.High)
	}
}

var (
	_ display.Drawer    = &Dev{}
	_ drivers.Displayer = &Dev{}
)
