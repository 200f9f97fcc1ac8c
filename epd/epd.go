// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrFailed is returned by every operation once the device failed to
// initialize. No transport traffic happens after that.
var ErrFailed = errors.New("epd: device marked as failed")

// Opts describes a panel: its geometry, the controller protocol and the
// engine settings.
type Opts struct {
	Geometry   Geometry
	Controller Controller

	// Inverted is the storage polarity of the black and color planes. An
	// inverted plane stores painted pixels as 0 bits.
	Inverted [2]bool
	// InvertTransfer flips every byte while streaming the planes. It is
	// independent of the storage polarity.
	InvertTransfer bool
	// Accent is returned by At for pixels painted on the color plane. Red
	// when nil.
	Accent color.Color

	// Writer is called by Update between clearing the planes and refreshing
	// the panel. Without it Update refreshes a blank panel.
	Writer func(d *Dev)

	// Logger receives diagnostic messages. Nil discards them.
	Logger *log.Logger
	// Sleep replaces time.Sleep for every delay and busy wait.
	Sleep func(time.Duration)
}

// state is the position in the refresh life-cycle.
type state uint8

const (
	uninitialized state = iota
	resetDone
	initialized
	poweredUp
	transferring
	refreshing
	poweredDown
	failed
)

func (s state) String() string {
	switch s {
	case uninitialized:
		return "uninitialized"
	case resetDone:
		return "reset"
	case initialized:
		return "initialized"
	case poweredUp:
		return "powered up"
	case transferring:
		return "transferring"
	case refreshing:
		return "refreshing"
	case poweredDown:
		return "powered down"
	case failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Dev is a handle to an e-paper panel.
//
// Dev is not safe for concurrent use. Only one Display may run at a time.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	geom    Geometry
	ctrl    Controller
	buf     *Buffer
	palette color.Palette

	invert bool
	writer func(d *Dev)
	logger *log.Logger
	sleep  func(time.Duration)

	state state
	plane Plane
}

// New opens a handle to a panel. rst and busy are optional: without a reset
// line the controller is recovered with a software reset instead of deep
// sleep, and without a busy line fixed worst-case delays are used.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts.Controller == nil {
		return nil, errors.New("epd: no controller")
	}
	if opts.Geometry.Width <= 0 || opts.Geometry.Height <= 0 {
		return nil, fmt.Errorf("epd: invalid geometry %s", opts.Geometry)
	}
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("epd: data/command pin is required")
	}
	if cs == nil || cs == gpio.INVALID {
		return nil, errors.New("epd: chip select pin is required")
	}
	if rst == gpio.INVALID {
		rst = nil
	}
	if busy == gpio.INVALID {
		busy = nil
	}

	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("epd: failed to connect over spi: %w", err)
	}

	if busy != nil {
		if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
			return nil, err
		}
	}

	accent := opts.Accent
	if accent == nil {
		accent = color.NRGBA{R: 255, A: 255}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	d := &Dev{
		c:       c,
		dc:      dc,
		cs:      cs,
		rst:     rst,
		busy:    busy,
		geom:    opts.Geometry,
		ctrl:    opts.Controller,
		buf:     NewBuffer(opts.Geometry, opts.Inverted),
		palette: color.Palette{color.White, color.Black, accent},
		invert:  opts.InvertTransfer,
		writer:  opts.Writer,
		logger:  logger,
		sleep:   sleep,
	}
	return d, nil
}

func (d *Dev) logf(format string, args ...any) {
	d.logger.Printf(format, args...)
}

// Setup clears the planes, resets the controller and powers it down until the
// first Display.
func (d *Dev) Setup() error {
	if d.state == failed {
		return ErrFailed
	}
	d.logf("initializing e-paper display %s", d.geom)

	d.buf.Clear()

	eh := errorHandler{d: d}
	eh.csOut(gpio.High)
	eh.HardwareReset()
	if eh.err != nil {
		return eh.err
	}
	d.state = resetDone

	d.ctrl.PowerDown(&eh)
	if eh.err != nil {
		return eh.err
	}
	d.state = initialized
	return nil
}

// Display powers the controller up, transfers the planes, refreshes the panel
// and powers it down again. It blocks for the whole refresh.
func (d *Dev) Display() error {
	if d.state == failed {
		return ErrFailed
	}
	eh := errorHandler{d: d}

	if err := d.ctrl.PowerUp(&eh); err != nil {
		d.state = failed
		d.logf("init commands failed, display can't be initialized: %v", err)
		return fmt.Errorf("epd: power up: %w", err)
	}
	if eh.err != nil {
		return eh.err
	}
	d.state = poweredUp

	d.transfer(&eh, BlackPlane)
	if d.buf.HasColor() {
		// The RAM counters do not rewind on their own between planes.
		d.transfer(&eh, ColorPlane)
	}
	if eh.err != nil {
		return eh.err
	}

	d.state = refreshing
	d.ctrl.UpdateDisplay(&eh)
	if eh.err != nil {
		return eh.err
	}

	d.ctrl.PowerDown(&eh)
	if eh.err != nil {
		return eh.err
	}
	d.state = poweredDown
	return nil
}

func (d *Dev) transfer(eh *errorHandler, p Plane) {
	d.ctrl.SetRAMAddress(eh, 0, 0)
	d.state, d.plane = transferring, p
	d.logf("transferring %s plane", p)
	d.ctrl.StartWrite(eh, p)
	eh.streamPlane(p, d.invert)
}

// Update clears the planes, lets the writer draw and refreshes the panel.
func (d *Dev) Update() error {
	d.Clear()
	if d.writer != nil {
		d.writer(d)
	}
	return d.Display()
}

// Clear resets the planes to the background. The panel is not refreshed.
func (d *Dev) Clear() {
	d.logf("clearing display")
	d.buf.Clear()
}

// Halt implements conn.Resource. It blanks the pending content in preparation
// for power loss without forcing a refresh.
func (d *Dev) Halt() error {
	d.Clear()
	return nil
}

// Failed reports whether the device could not be initialized.
func (d *Dev) Failed() bool {
	return d.state == failed
}

// Geometry returns the panel geometry.
func (d *Dev) Geometry() Geometry {
	return d.geom
}

// Buffer returns the plane store.
func (d *Dev) Buffer() *Buffer {
	return d.buf
}

// SetPixel paints the pixel at (x, y) according to the classification of c.
// Pixels outside of the panel are ignored.
func (d *Dev) SetPixel(x, y int, c color.Color) {
	offset, bit, ok := d.geom.OffsetAndBit(x, y)
	if !ok {
		return
	}
	switch Classify(d.ctrl, d.buf.HasColor(), c) {
	case InkBlack:
		d.buf.SetBit(BlackPlane, offset, bit, true)
	case InkColor:
		d.buf.SetBit(ColorPlane, offset, bit, true)
	}
}

// Set implements draw.Image.
func (d *Dev) Set(x, y int, c color.Color) {
	d.SetPixel(x, y, c)
}

// At implements image.Image. It returns white, black or the accent color.
func (d *Dev) At(x, y int) color.Color {
	offset, bit, ok := d.geom.OffsetAndBit(x, y)
	if !ok {
		return d.palette[0]
	}
	if d.buf.Active(BlackPlane, offset, bit) {
		return d.palette[1]
	}
	if d.buf.Active(ColorPlane, offset, bit) {
		return d.palette[2]
	}
	return d.palette[0]
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return d.palette
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.geom.Bounds()
}

// Draw implements display.Drawer. The planes are cleared, src is drawn and the
// panel refreshed.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, sp image.Point) error {
	d.Clear()
	draw.Draw(d, dstRect, src, sp, draw.Src)
	return d.Display()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, %s}", d.c, d.dc, d.geom)
}

var _ display.Drawer = &Dev{}
var _ draw.Image = &Dev{}
