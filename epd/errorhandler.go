// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// busyPollInterval is how often the busy line is sampled.
const busyPollInterval = 10 * time.Millisecond

// busyFallback replaces busy polling when no busy line is wired.
const busyFallback = 500 * time.Millisecond

// errorHandler frames commands for the controller and keeps the first error.
// Once an error is recorded every further transfer is skipped.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.dc.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.cs.Out(l)
}

func (eh *errorHandler) cTx(w []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, nil)
}

// sendOpcode selects the chip, switches to command mode and sends op.
func (eh *errorHandler) sendOpcode(op byte, holdSelected bool) {
	eh.csOut(gpio.Low)
	eh.dcOut(gpio.Low)
	eh.cTx([]byte{op})
	if !holdSelected {
		eh.csOut(gpio.High)
	}
}

// sendData switches to data mode and sends each byte in its own chip-select
// frame.
func (eh *errorHandler) sendData(data []byte) {
	eh.dcOut(gpio.High)
	var w [1]byte
	for _, b := range data {
		w[0] = b
		eh.csOut(gpio.Low)
		eh.cTx(w[:])
		eh.csOut(gpio.High)
	}
}

// streamPlane sends a whole plane after the controller started a RAM write.
func (eh *errorHandler) streamPlane(p Plane, invert bool) {
	eh.dcOut(gpio.High)
	var w [1]byte
	for i, n := 0, eh.d.buf.Len(); i < n && eh.err == nil; i++ {
		w[0] = eh.d.buf.Byte(p, i)
		if invert {
			w[0] = ^w[0]
		}
		eh.csOut(gpio.Low)
		eh.cTx(w[:])
		eh.csOut(gpio.High)
	}
}

// Command implements Bus.
func (eh *errorHandler) Command(op byte, payload ...byte) {
	eh.sendOpcode(op, false)
	eh.sendData(payload)
}

// Opcode implements Bus.
func (eh *errorHandler) Opcode(op byte, holdSelected bool) {
	eh.sendOpcode(op, holdSelected)
}

// BusyWait implements Bus. There is no upper bound: a busy line stuck high
// blocks forever.
func (eh *errorHandler) BusyWait() {
	if eh.d.busy == nil {
		eh.d.sleep(busyFallback)
		return
	}
	eh.d.logf("hardware busy waiting")
	for eh.d.busy.Read() == gpio.High {
		eh.d.sleep(busyPollInterval)
	}
}

// Sleep implements Bus.
func (eh *errorHandler) Sleep(d time.Duration) {
	eh.d.sleep(d)
}

// HardwareReset implements Bus.
func (eh *errorHandler) HardwareReset() {
	if eh.d.rst == nil {
		eh.d.logf("no hardware reset available")
		return
	}
	eh.d.logf("hardware reset")
	eh.rstOut(gpio.High)
	eh.d.sleep(10 * time.Millisecond)
	eh.rstOut(gpio.Low)
	eh.d.sleep(10 * time.Millisecond)
	eh.rstOut(gpio.High)
}

// CanReset implements Bus.
func (eh *errorHandler) CanReset() bool {
	return eh.d.rst != nil
}

// CanPollBusy implements Bus.
func (eh *errorHandler) CanPollBusy() bool {
	return eh.d.busy != nil
}

// Replay implements Bus.
func (eh *errorHandler) Replay(s Script) error {
	return s.Replay(eh.BusyWait, eh.d.sleep, func(op byte, payload []byte) {
		eh.Command(op, payload...)
	})
}

// Geometry implements Bus.
func (eh *errorHandler) Geometry() Geometry {
	return eh.d.geom
}

// Logf implements Bus.
func (eh *errorHandler) Logf(format string, args ...any) {
	eh.d.logf(format, args...)
}

var _ Bus = &errorHandler{}
