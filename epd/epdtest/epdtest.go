// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epdtest records the traffic an epd.Dev produces on its SPI port and
// control pins, so drivers can be tested without hardware.
package epdtest

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Frame is one controller command as decoded from the wire: the byte sent in
// command mode followed by the bytes sent in data mode.
type Frame struct {
	Cmd  byte
	Data []byte
}

// Recorder keeps a trace of every pin change, transferred byte and delay.
type Recorder struct {
	// Events is the raw trace, e.g. "cs:Low", "tx:0x12", "sleep:10ms".
	Events []string
	// Frames is the trace decoded by the level of the "dc" pin.
	Frames []Frame
	// Unframed counts bytes sent while the "cs" pin was not asserted.
	Unframed int
	// Slept is the sum of all delays.
	Slept time.Duration

	// Connection parameters requested through Port.
	MaxHz physic.Frequency
	Mode  spi.Mode
	Bits  int

	// TxErr, when set, is returned by every transfer.
	TxErr error
	// Quiet drops Events and Frames, so a long running emulation does not
	// grow without bound. Unframed and Slept are still maintained.
	Quiet bool

	dc       gpio.Level
	selected bool
}

// Pin is a gpiotest.Pin whose output changes are recorded. Read reports High
// for the first BusyReads calls and Low afterwards.
type Pin struct {
	*gpiotest.Pin

	// BusyReads is the number of reads still reporting High.
	BusyReads int
	// Reads counts Read calls.
	Reads int

	r *Recorder
}

// Pin returns a new recorded pin. The names "dc" and "cs" are tracked to
// decode frames.
func (r *Recorder) Pin(name string) *Pin {
	return &Pin{
		Pin: &gpiotest.Pin{N: name, L: gpio.High},
		r:   r,
	}
}

// Out implements gpio.PinOut.
func (p *Pin) Out(l gpio.Level) error {
	p.r.event(p.N + ":" + l.String())
	switch p.N {
	case "dc":
		p.r.dc = l
	case "cs":
		p.r.selected = l == gpio.Low
	}
	return p.Pin.Out(l)
}

// Read implements gpio.PinIn.
func (p *Pin) Read() gpio.Level {
	p.Reads++
	if p.BusyReads > 0 {
		p.BusyReads--
		return gpio.High
	}
	return gpio.Low
}

// Sleep records a delay instead of blocking.
func (r *Recorder) Sleep(d time.Duration) {
	r.event("sleep:" + d.String())
	r.Slept += d
}

// Port returns a spi.Port whose connection records transfers.
func (r *Recorder) Port() spi.Port {
	return &port{r: r}
}

// Reset drops the recorded trace and keeps the pin levels.
func (r *Recorder) Reset() {
	r.Events = nil
	r.Frames = nil
	r.Unframed = 0
	r.Slept = 0
}

// Commands returns the command bytes of the recorded frames, in order.
func (r *Recorder) Commands() []byte {
	out := make([]byte, 0, len(r.Frames))
	for _, f := range r.Frames {
		out = append(out, f.Cmd)
	}
	return out
}

func (r *Recorder) event(e string) {
	if !r.Quiet {
		r.Events = append(r.Events, e)
	}
}

func (r *Recorder) tx(w []byte) error {
	if r.TxErr != nil {
		return r.TxErr
	}
	for _, b := range w {
		if !r.selected {
			r.Unframed++
		}
		if r.Quiet {
			continue
		}
		r.event(fmt.Sprintf("tx:0x%02x", b))
		if r.dc == gpio.Low || len(r.Frames) == 0 {
			r.Frames = append(r.Frames, Frame{Cmd: b})
			continue
		}
		cur := &r.Frames[len(r.Frames)-1]
		cur.Data = append(cur.Data, b)
	}
	return nil
}

type port struct {
	r *Recorder
}

func (p *port) String() string {
	return "epdtest"
}

func (p *port) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.r.MaxHz, p.r.Mode, p.r.Bits = f, mode, bits
	return &recConn{r: p.r}, nil
}

func (p *port) LimitSpeed(f physic.Frequency) error {
	return nil
}

type recConn struct {
	r *Recorder
}

func (c *recConn) String() string {
	return "epdtest"
}

func (c *recConn) Tx(w, r []byte) error {
	return c.r.tx(w)
}

func (c *recConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.r.tx(pkt.W); err != nil {
			return err
		}
	}
	return nil
}

func (c *recConn) Duplex() conn.Duplex {
	return conn.Half
}

var _ spi.Conn = &recConn{}
var _ gpio.PinIO = &Pin{}
