// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package wioterminal

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/wioterminal/ili9341"
	"periph.io/x/wioterminal/samd51"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lis3dh"
	"tinygo.org/x/drivers/tester"
)

func TestDisplay_Init(t *testing.T) {
	port := &panelPort{id: [4]byte{0, 0x00, 0x93, 0x41}}
	b := newBoard(t, &samd51.Wiring{SPI: map[int]spi.Port{7: port}})
	lcd, backlight, err := b.sets.Display.Init(b.p.SERCOM[7], b.c, b.opts())
	if err != nil {
		t.Fatal(err)
	}
	if port.f != DisplayFrequency || port.mode != DisplayMode {
		t.Fatalf("Connect(%s, %s)", port.f, port.mode)
	}
	if lcd.Orientation() != ili9341.LandscapeFlipped || lcd.Width() != 320 {
		t.Fatal(lcd.Orientation())
	}
	if backlight.Read() != gpio.High {
		t.Fatal("backlight off")
	}
	if l := b.level("LCD_CS"); l != gpio.High {
		t.Fatal("chip left selected")
	}
	if l := b.level("LCD_RESET"); l != gpio.High {
		t.Fatal("panel left in reset")
	}
	if f := b.sets.Port().Func(samd51.PinID('B', 19)); f != "SERCOM7_PAD3" {
		t.Fatal(f)
	}
	if w := port.c.writes; len(w) < 2 || w[len(w)-2][0] != 0x36 || w[len(w)-1][0] != 0xE8 {
		t.Fatalf("last writes %x", w[len(w)-2:])
	}
	// The bundle pins were consumed.
	if _, err := b.sets.Display.CS.IntoPushPullOutput(); !errors.Is(err, samd51.ErrTaken) {
		t.Fatalf("IntoPushPullOutput() = %v", err)
	}
}

func TestDisplay_Init_notDetected(t *testing.T) {
	port := &panelPort{}
	b := newBoard(t, &samd51.Wiring{SPI: map[int]spi.Port{7: port}})
	_, _, err := b.sets.Display.Init(b.p.SERCOM[7], b.c, b.opts())
	if !errors.Is(err, ErrInit) || !errors.Is(err, ili9341.ErrNotDetected) {
		t.Fatalf("Init() = %v", err)
	}

	// Without a wire the identification read fails.
	b = newBoard(t, nil)
	_, _, err = b.sets.Display.Init(b.p.SERCOM[7], b.c, b.opts())
	if !errors.Is(err, ErrInit) || !errors.Is(err, samd51.ErrTransfer) {
		t.Fatalf("Init() = %v", err)
	}
}

func TestDisplay_Init_wrongSercom(t *testing.T) {
	b := newBoard(t, nil)
	if _, _, err := b.sets.Display.Init(b.p.SERCOM[5], b.c, b.opts()); !errors.Is(err, samd51.ErrPad) {
		t.Fatalf("Init() = %v", err)
	}
}

func TestAccelerometer_Init(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(AccelAddress)
	dev.Registers[lis3dh.WHO_AM_I] = 0x33
	// X = 0, Y = -1g, Z = 1g at ±2g.
	copy(dev.Registers[0xA8:], []byte{0x00, 0x00, 0x04, 0xC0, 0xFC, 0x3F})
	b := newBoard(t, &samd51.Wiring{I2C: map[int]i2c.Bus{4: &testerBus{I2CBus: bus}}})
	a, err := b.sets.Accelerometer.Init(b.p.SERCOM[4], b.c)
	if err != nil {
		t.Fatal(err)
	}
	if f := a.Bus().Frequency(); f > AccelFrequency || f < 390*physic.KiloHertz {
		t.Fatal(f)
	}
	if dev.Registers[lis3dh.REG_CTRL1] != 0x77 || dev.Registers[lis3dh.REG_CTRL4] != 0x88 {
		t.Fatalf("CTRL1=%#x CTRL4=%#x", dev.Registers[lis3dh.REG_CTRL1], dev.Registers[lis3dh.REG_CTRL4])
	}
	if a.Range() != lis3dh.RANGE_2_G {
		t.Fatal(a.Range())
	}
	x, y, z, err := a.ReadRaw()
	if err != nil {
		t.Fatal(err)
	}
	if x != 0 || y != -16380 || z != 16380 {
		t.Fatal(x, y, z)
	}
	if err := a.Update(drivers.Acceleration); err != nil {
		t.Fatal(err)
	}
	if x, y, z := a.Acceleration(); x != 0 || y != -1000000 || z != 1000000 {
		t.Fatal(x, y, z)
	}
	dev.Err = errors.New("nack")
	if err := a.Update(drivers.Temperature); err != nil {
		t.Fatal(err)
	}
	if err := a.Update(drivers.AllMeasurements); !errors.Is(err, samd51.ErrTransfer) {
		t.Fatalf("Update() = %v", err)
	}
}

func TestAccelerometer_Init_errors(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(AccelAddress)
	b := newBoard(t, &samd51.Wiring{I2C: map[int]i2c.Bus{4: &testerBus{I2CBus: bus}}})
	if _, err := b.sets.Accelerometer.Init(b.p.SERCOM[4], b.c); !errors.Is(err, ErrInit) {
		t.Fatalf("Init() = %v", err)
	}

	dev.Err = errors.New("nack")
	b = newBoard(t, &samd51.Wiring{I2C: map[int]i2c.Bus{4: &testerBus{I2CBus: bus}}})
	_, err := b.sets.Accelerometer.Init(b.p.SERCOM[4], b.c)
	if !errors.Is(err, ErrInit) || !errors.Is(err, samd51.ErrTransfer) {
		t.Fatalf("Init() = %v", err)
	}
}

// A panel that did not answer leaves the bundle and SERCOM7 free for a retry.
func TestDisplay_Init_retry(t *testing.T) {
	port := &panelPort{}
	b := newBoard(t, &samd51.Wiring{SPI: map[int]spi.Port{7: port}})
	if _, _, err := b.sets.Display.Init(b.p.SERCOM[7], b.c, b.opts()); !errors.Is(err, ErrInit) {
		t.Fatalf("Init() = %v", err)
	}
	if r := b.p.SERCOM[7].Role(); r != "" {
		t.Fatal(r)
	}
	if l := b.level("LCD_BACKLIGHT"); l != gpio.Low {
		t.Fatal("backlight left on")
	}
	port.c.id = [4]byte{0, 0x00, 0x93, 0x41}
	lcd, backlight, err := b.sets.Display.Init(b.p.SERCOM[7], b.c, b.opts())
	if err != nil {
		t.Fatal(err)
	}
	if lcd.Orientation() != ili9341.LandscapeFlipped || backlight.Read() != gpio.High {
		t.Fatal(lcd.Orientation(), backlight.Read())
	}
}

func TestAccelerometer_Init_retry(t *testing.T) {
	bus := tester.NewI2CBus(t)
	dev := bus.NewDevice(AccelAddress)
	b := newBoard(t, &samd51.Wiring{I2C: map[int]i2c.Bus{4: &testerBus{I2CBus: bus}}})
	if _, err := b.sets.Accelerometer.Init(b.p.SERCOM[4], b.c); !errors.Is(err, ErrInit) {
		t.Fatalf("Init() = %v", err)
	}
	if r := b.p.SERCOM[4].Role(); r != "" {
		t.Fatal(r)
	}
	dev.Registers[lis3dh.WHO_AM_I] = 0x33
	a, err := b.sets.Accelerometer.Init(b.p.SERCOM[4], b.c)
	if err != nil {
		t.Fatal(err)
	}
	if r := b.p.SERCOM[4].Role(); r != "I2C" || a.Range() != lis3dh.RANGE_2_G {
		t.Fatal(r, a.Range())
	}
}

func TestBuzzer_Init(t *testing.T) {
	b := newBoard(t, nil)
	pwm := b.sets.Buzzer.Init(b.p.TCC[0], b.c)
	if f := pwm.Frequency(); f != BuzzerFrequency {
		t.Fatal(f)
	}
	if s := pwm.String(); s != "TCC0/CC4" {
		t.Fatal(s)
	}
	if err := pwm.SetDuty(gpio.DutyHalf); err != nil {
		t.Fatal(err)
	}
}

func TestUART_Init(t *testing.T) {
	b := newBoard(t, nil)
	u, err := b.sets.UART.Init(b.p.SERCOM[2], b.c, 115200*physic.Hertz)
	if err != nil {
		t.Fatal(err)
	}
	if u.Register() != 64530 {
		t.Fatal(u.Register())
	}
	if _, err := u.Write([]byte("hi")); !errors.Is(err, samd51.ErrTransfer) {
		t.Fatalf("Write() = %v", err)
	}
}

func TestUSB_Init(t *testing.T) {
	b := newBoard(t, nil)
	u, err := b.sets.USB.Init(b.p.USB, b.c)
	if err != nil {
		t.Fatal(err)
	}
	if f, _ := b.c.Frequency(u.Generator()); f != samd51.USBFrequency {
		t.Fatal(f)
	}
}

func TestSDCard_Init(t *testing.T) {
	b := newBoard(t, nil)
	sd, err := b.sets.SDCard.Init(b.p.SERCOM[6], b.c, SDFrequency)
	if err != nil {
		t.Fatal(err)
	}
	if f := sd.SPI.Frequency(); f != SDFrequency {
		t.Fatal(f)
	}
	if sd.CS.Read() != gpio.High {
		t.Fatal("card selected")
	}
	if sd.DET.Pull() != gpio.PullUp || sd.Inserted() {
		t.Fatal(sd.DET.Pull())
	}
	if s := sd.String(); s != "SD{SERCOM6}" {
		t.Fatal(s)
	}
}

func TestSDCard_Inserted(t *testing.T) {
	det := &gpiotest.Pin{N: "SD_DET"}
	b := newBoard(t, &samd51.Wiring{Lines: map[samd51.ID]gpio.PinIO{samd51.PinID('D', 12): det}})
	sd, err := b.sets.SDCard.Init(b.p.SERCOM[6], b.c, SDFrequency)
	if err != nil {
		t.Fatal(err)
	}
	if sd.Inserted() {
		t.Fatal("pulled up line reads as inserted")
	}
	det.L = gpio.Low
	if !sd.Inserted() {
		t.Fatal("card not detected")
	}
}

// Binding the same bundles on two fresh chips yields the same rates.
func TestInit_deterministic(t *testing.T) {
	type rates struct {
		sd, uart, buzzer physic.Frequency
		reg              uint16
	}
	bind := func() rates {
		b := newBoard(t, nil)
		sd, err := b.sets.SDCard.Init(b.p.SERCOM[6], b.c, 7*physic.MegaHertz)
		if err != nil {
			t.Fatal(err)
		}
		u, err := b.sets.UART.Init(b.p.SERCOM[2], b.c, 9600*physic.Hertz)
		if err != nil {
			t.Fatal(err)
		}
		pwm := b.sets.Buzzer.Init(b.p.TCC[0], b.c)
		return rates{sd.SPI.Frequency(), u.Baud(), pwm.Frequency(), u.Register()}
	}
	if a, b := bind(), bind(); a != b {
		t.Fatalf("%+v != %+v", a, b)
	}
}

//

type board struct {
	p    *samd51.Peripherals
	c    *samd51.Clocks
	sets *Sets
}

func newBoard(t *testing.T, w *samd51.Wiring) *board {
	p := samd51.New(w)
	pins, err := NewPins(p.PORT)
	if err != nil {
		t.Fatal(err)
	}
	c, err := samd51.NewClocks(p.GCLK)
	if err != nil {
		t.Fatal(err)
	}
	sets, err := pins.Split()
	if err != nil {
		t.Fatal(err)
	}
	return &board{p: p, c: c, sets: sets}
}

func (b *board) opts() *ili9341.Opts {
	return &ili9341.Opts{Clock: &autoClock{clockwork.NewFakeClock()}}
}

func (b *board) level(name string) gpio.Level {
	s, _ := b.sets.rest.cat.Lookup(name)
	return b.sets.Port().Level(s.ID)
}

// autoClock is a fake clock whose Sleep advances time instead of blocking.
type autoClock struct {
	clockwork.FakeClock
}

func (c *autoClock) Sleep(d time.Duration) {
	c.Advance(d)
}

// panelPort connects to a panel that answers every read with id and records
// every write.
type panelPort struct {
	id   [4]byte
	f    physic.Frequency
	mode spi.Mode
	c    *panelConn
}

func (p *panelPort) String() string {
	return "panel"
}

func (p *panelPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.f, p.mode = f, mode
	p.c = &panelConn{id: p.id}
	return p.c, nil
}

type panelConn struct {
	id     [4]byte
	writes [][]byte
}

func (c *panelConn) String() string {
	return "panel"
}

func (c *panelConn) Duplex() conn.Duplex {
	return conn.Full
}

func (c *panelConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		copy(r, c.id[:])
		return nil
	}
	c.writes = append(c.writes, append([]byte(nil), w...))
	return nil
}

func (c *panelConn) TxPackets(p []spi.Packet) error {
	return errors.New("panel: TxPackets not supported")
}

// testerBus adapts the TinyGo mock bus to i2c.Bus.
type testerBus struct {
	*tester.I2CBus
}

func (b *testerBus) String() string {
	return "tester"
}

func (b *testerBus) SetSpeed(f physic.Frequency) error {
	return nil
}
