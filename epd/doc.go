// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd is a generic engine for bistable e-paper panels.
//
// A Dev keeps one or two bit-packed planes (black, and optionally an accent
// color) sized from a Geometry, and sequences the power and refresh
// life-cycle of the panel. The commands sent at each step come from a
// Controller, which sees the device through a Bus.
//
// Drawing only mutates the planes; nothing reaches the panel until Display.
// Display blocks for the whole refresh, including busy waits. Busy waits have
// no timeout: a busy line that never goes low blocks the caller forever.
//
// Every command byte and every payload byte is sent in its own chip-select
// frame.
package epd
