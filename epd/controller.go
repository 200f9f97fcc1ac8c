// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"image/color"
	"time"
)

// Bus is the view of the device handed to a Controller. Framing errors are
// kept by the Bus and reported by the Dev operation that invoked the
// controller.
type Bus interface {
	// Command sends op followed by payload. Each payload byte is framed by its
	// own chip-select pulse.
	Command(op byte, payload ...byte)
	// Opcode sends op alone. With holdSelected the chip-select line is left
	// asserted.
	Opcode(op byte, holdSelected bool)
	// BusyWait blocks until the controller is idle.
	BusyWait()
	// Sleep blocks for d.
	Sleep(d time.Duration)
	// HardwareReset pulses the reset line, if there is one.
	HardwareReset()
	// CanReset reports whether a reset line is wired.
	CanReset() bool
	// CanPollBusy reports whether a busy line is wired.
	CanPollBusy() bool
	// Replay runs an init script against the controller.
	Replay(s Script) error
	// Geometry returns the geometry of the panel being driven.
	Geometry() Geometry
	// Logf emits a diagnostic message.
	Logf(format string, args ...any)
}

// Controller implements the protocol of a controller family. The Dev
// sequences the calls; the controller decides which commands they send.
type Controller interface {
	// PowerUp brings the controller out of reset and configures it. An error
	// is fatal for the device.
	PowerUp(b Bus) error
	// PowerDown leaves the panel in its low-power resting state.
	PowerDown(b Bus)
	// UpdateDisplay triggers the refresh and waits for its completion.
	UpdateDisplay(b Bus)
	// StartWrite begins a RAM write of plane p.
	StartWrite(b Bus, p Plane)
	// SetRAMAddress rewinds the RAM address counters.
	SetRAMAddress(b Bus, x, y int)

	// IsBlack and IsColor classify a logical color.
	IsBlack(c color.Color) bool
	IsColor(c color.Color) bool
}

// Ink is the classification of a logical color.
type Ink uint8

const (
	// InkNone leaves the pixel at the background.
	InkNone Ink = iota
	// InkBlack paints the black plane.
	InkBlack
	// InkColor paints the color plane.
	InkColor
)

func (i Ink) String() string {
	switch i {
	case InkBlack:
		return "black"
	case InkColor:
		return "color"
	default:
		return "none"
	}
}

// Classify maps c to exactly one plane. The black predicate wins when both
// match. Colors more than half transparent are never painted.
func Classify(ctrl Controller, hasColor bool, c color.Color) Ink {
	if _, _, _, a := c.RGBA(); a < 0x8000 {
		return InkNone
	}
	if ctrl.IsBlack(c) {
		return InkBlack
	}
	if hasColor && ctrl.IsColor(c) {
		return InkColor
	}
	return InkNone
}
