// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1680

import (
	"fmt"
	"image/color"
	"time"

	"github.com/GermanBionicSystems/epaper/epd"
)

// Commands
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	writeVcomRegister              byte = 0x2C
	borderWaveformControl          byte = 0x3C
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	_ // display mode 2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

// deepSleepMode1 keeps the RAM content while sleeping.
const deepSleepMode1 byte = 0x01

// RAM size of the controller: 176 source outputs by 296 gates.
const (
	ramSources = 176
	ramGates   = 296
)

// Delays of the power sequence.
const (
	powerUpDelay   = 100 * time.Millisecond
	deepSleepDelay = 100 * time.Millisecond
	// refreshFallback covers a full refresh when no busy line is wired.
	refreshFallback = 1000 * time.Millisecond
)

// DefaultInitScript configures RAM data entry, border, VCOM and driving
// voltages after a software reset.
var DefaultInitScript = epd.Script{
	swReset, 0,
	epd.ScriptDelay, 20,
	dataEntryModeSetting, 1, 0x03, // X increment, Y increment
	borderWaveformControl, 1, 0x05,
	writeVcomRegister, 1, 0x36,
	gateDrivingVoltageControl, 1, 0x17,
	sourceDrivingVoltageControl, 3, 0x41, 0x00, 0x32,
	setRAMXAddressCounter, 1, 1,
	setRAMYAddressCounter, 2, 0, 0,
	epd.ScriptEnd,
}

// Controller drives an SSD1680 through the epd engine.
//
// The panel is addressed with its gate lines along the drawing X axis: RAM X
// counts bytes of 8 rows, RAM Y counts columns. The RAM window is derived
// from the geometry of the engine driving the controller.
type Controller struct {
	// Script is replayed on every power up.
	Script epd.Script
	// RAMXStart is the first RAM X address, in bytes, wired to the panel.
	RAMXStart byte
	// UpdateSequence is the displayUpdateControl2 value used to refresh.
	UpdateSequence byte
}

// PowerUp implements epd.Controller.
func (c *Controller) PowerUp(b epd.Bus) error {
	g := b.Geometry()
	if err := c.checkGeometry(g); err != nil {
		return err
	}
	b.Logf("powering up display")
	b.HardwareReset()
	b.Sleep(powerUpDelay)
	b.BusyWait()

	if err := b.Replay(c.Script); err != nil {
		return err
	}

	rows := byte((g.Height + 7) / 8)
	b.Command(setRAMXAddressStartEndPosition, c.RAMXStart, c.RAMXStart+rows-1)

	lastY := g.Width - 1
	b.Command(setRAMYAddressStartEndPosition, 0x00, 0x00, byte(lastY), byte(lastY>>8))

	b.Command(driverOutputControl, byte(lastY), byte(lastY>>8), 0x00)
	b.Logf("display powered")
	return nil
}

// checkGeometry rejects a drawing area that does not fit the RAM past
// RAMXStart.
func (c *Controller) checkGeometry(g epd.Geometry) error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("ssd1680: invalid geometry %s", g)
	}
	if 8*int(c.RAMXStart)+g.Height > ramSources || g.Width > ramGates {
		return fmt.Errorf("ssd1680: %s does not fit the %dx%d RAM from X address %d", g, ramGates, ramSources, c.RAMXStart)
	}
	return nil
}

// PowerDown implements epd.Controller. Deep sleep is only entered when the
// reset line can wake the controller again.
func (c *Controller) PowerDown(b epd.Bus) {
	b.Logf("powering down display")
	if b.CanReset() {
		b.Logf("deep sleeping")
		b.Command(deepSleepMode, deepSleepMode1)
		b.Sleep(deepSleepDelay)
	} else {
		b.Logf("sw reset")
		b.Opcode(swReset, false)
		b.BusyWait()
	}
	b.Logf("powered down")
}

// UpdateDisplay implements epd.Controller.
func (c *Controller) UpdateDisplay(b epd.Bus) {
	b.Logf("updating display")
	b.Command(displayUpdateControl2, c.UpdateSequence)
	b.Opcode(masterActivation, false)
	b.BusyWait()
	if !b.CanPollBusy() {
		b.Sleep(refreshFallback)
	}
}

// StartWrite implements epd.Controller.
func (c *Controller) StartWrite(b epd.Bus, p epd.Plane) {
	b.Logf("beginning write of %s plane", p)
	switch p {
	case epd.BlackPlane:
		b.Opcode(writeRAMBW, false)
	case epd.ColorPlane:
		b.Opcode(writeRAMRed, false)
	}
}

// SetRAMAddress implements epd.Controller. x and y are in pixels.
func (c *Controller) SetRAMAddress(b epd.Bus, x, y int) {
	b.Command(setRAMXAddressCounter, c.RAMXStart+byte(x/8))
	b.Command(setRAMYAddressCounter, byte(y), byte(y>>8))
}

// IsBlack implements epd.Controller: dark colors without green or blue.
func (c *Controller) IsBlack(col color.Color) bool {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	return n.R <= 120 && n.G == 0 && n.B == 0
}

// IsColor implements epd.Controller: colors whose red channel dominates.
func (c *Controller) IsColor(col color.Color) bool {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	return n.R > 0 && uint(n.R) > 2*uint(n.G) && uint(n.R) > 2*uint(n.B)
}

var _ epd.Controller = &Controller{}
