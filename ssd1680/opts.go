// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/rpi"

	"github.com/GermanBionicSystems/epaper/epd"
)

// Opts defines a panel driven by an SSD1680.
type Opts struct {
	Width  int
	Height int
	// Color is set for panels with a red plane.
	Color bool

	Script         epd.Script
	RAMXStart      byte
	UpdateSequence byte
}

// ThinkInk213TriColorRW is the Adafruit 2.13" ThinkInk black/white/red panel.
var ThinkInk213TriColorRW = Opts{
	Width:     250,
	Height:    122,
	Color:     true,
	Script:    DefaultInitScript,
	RAMXStart: 1,
	UpdateSequence: displayUpdateEnableAnalog |
		displayUpdateEnableClock |
		displayUpdateLoadTemperature |
		displayUpdateLoadLUTFromOTP |
		displayUpdateDisplay,
}

// waveshare213V4Script is the full-refresh initialization of the Waveshare
// 2.13" V4 HAT.
var waveshare213V4Script = epd.Script{
	epd.ScriptDelay, 0,
	swReset, 0,
	epd.ScriptDelay, 0,
	dataEntryModeSetting, 1, 0x03,
	borderWaveformControl, 1, 0x05,
	displayUpdateControl1, 2, 0x80, 0x80,
	tempSensorSelect, 1, 0x80,
	epd.ScriptDelay, 0,
	epd.ScriptEnd,
}

// Waveshare213V4 is the Waveshare 2.13" V4 black/white panel.
var Waveshare213V4 = Opts{
	Width:     250,
	Height:    122,
	Script:    waveshare213V4Script,
	RAMXStart: 0,
	UpdateSequence: displayUpdateEnableAnalog |
		displayUpdateEnableClock |
		displayUpdateLoadTemperature |
		displayUpdateLoadLUTFromOTP |
		displayUpdateDisplay |
		displayUpdateDisableAnalog |
		displayUpdateDisableClock,
}

// Controller returns the protocol implementation for the panel.
func (o *Opts) Controller() *Controller {
	return &Controller{
		Script:         o.Script,
		RAMXStart:      o.RAMXStart,
		UpdateSequence: o.UpdateSequence,
	}
}

// EPD returns engine options for the panel. The black plane stores painted
// pixels as 0 bits, the red plane as 1 bits. The result can be adjusted
// before being passed to epd.New.
func (o *Opts) EPD() *epd.Opts {
	return &epd.Opts{
		Geometry: epd.Geometry{
			Width:  o.Width,
			Height: o.Height,
			Color:  o.Color,
		},
		Controller: o.Controller(),
		Inverted:   [2]bool{true, false},
	}
}

// New creates a handle to the display.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*epd.Dev, error) {
	return epd.New(p, dc, cs, rst, busy, opts.EPD())
}

// NewHat creates a handle to the display using the Waveshare e-Paper HAT
// pinout on a Raspberry Pi.
func NewHat(p spi.Port, opts *Opts) (*epd.Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// Model lists the supported panels.
type Model int

// Supported Model.
const (
	ThinkInk213 Model = iota
	Waveshare213
)

// Set sets the Model to a value represented by the string s. Set implements
// the flag.Value interface.
func (m *Model) Set(s string) error {
	switch s {
	case "thinkink213":
		*m = ThinkInk213
	case "waveshare213v4":
		*m = Waveshare213
	default:
		return fmt.Errorf("ssd1680: unknown model %q: expected thinkink213 or waveshare213v4", s)
	}
	return nil
}

func (m Model) String() string {
	switch m {
	case ThinkInk213:
		return "thinkink213"
	case Waveshare213:
		return "waveshare213v4"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// Opts returns a copy of the preset for m.
func (m Model) Opts() (*Opts, error) {
	var o Opts
	switch m {
	case ThinkInk213:
		o = ThinkInk213TriColorRW
	case Waveshare213:
		o = Waveshare213V4
	default:
		return nil, fmt.Errorf("ssd1680: unknown model %v", m)
	}
	return &o, nil
}
