// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"fmt"
	"time"
)

// Script opcodes with special meaning.
const (
	// ScriptDelay waits for the busy line, then sleeps for the number of
	// milliseconds given as its single argument byte. It is not sent to the
	// controller.
	ScriptDelay byte = 0xFF
	// ScriptEnd terminates a script. No argument count follows it.
	ScriptEnd byte = 0xFE
)

// MaxScriptArgs is the capacity of the scratch buffer used while replaying a
// script. A command with more argument bytes is a programming error in the
// controller definition and panics.
const MaxScriptArgs = 64

// ErrMissingScript is returned when a controller has no init script. The
// device cannot be initialized without one.
var ErrMissingScript = errors.New("epd: no init script")

// Script is a compact controller initialization sequence:
//
//	<opcode> <argc> <argc bytes of payload> ... ScriptEnd
//
// Scripts are trusted to be well-formed; use Validate in tests.
type Script []byte

// Replay walks the script, forwarding each command to send. Delay entries call
// busyWait and then sleep. Nothing past ScriptEnd is read.
func (s Script) Replay(busyWait func(), sleep func(time.Duration), send func(op byte, payload []byte)) error {
	if s == nil {
		return ErrMissingScript
	}
	var buf [MaxScriptArgs]byte
	for i := 0; s[i] != ScriptEnd; {
		op := s[i]
		n := int(s[i+1])
		i += 2
		if op == ScriptDelay {
			busyWait()
			sleep(time.Duration(n) * time.Millisecond)
			continue
		}
		args := buf[:n]
		copy(args, s[i:i+n])
		i += n
		send(op, args)
	}
	return nil
}

// Validate checks that the script terminates and that every command fits the
// replay scratch buffer.
func (s Script) Validate() error {
	if s == nil {
		return ErrMissingScript
	}
	for i := 0; ; {
		if i >= len(s) {
			return errors.New("epd: script is not terminated")
		}
		op := s[i]
		if op == ScriptEnd {
			return nil
		}
		if i+1 >= len(s) {
			return fmt.Errorf("epd: command 0x%02x at %d lacks an argument count", op, i)
		}
		n := int(s[i+1])
		i += 2
		if op == ScriptDelay {
			continue
		}
		if n > MaxScriptArgs {
			return fmt.Errorf("epd: command 0x%02x has %d arguments, limit is %d", op, n, MaxScriptArgs)
		}
		if i+n > len(s) {
			return fmt.Errorf("epd: command 0x%02x is truncated", op)
		}
		i += n
	}
}
