// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import "fmt"

// Plane identifies one of the bit-packed pixel planes of a panel.
type Plane uint8

const (
	// BlackPlane is always present.
	BlackPlane Plane = iota
	// ColorPlane holds the accent color and only exists on panels with
	// Geometry.Color set.
	ColorPlane
)

func (p Plane) String() string {
	switch p {
	case BlackPlane:
		return "black"
	case ColorPlane:
		return "color"
	default:
		return fmt.Sprintf("Plane(%d)", uint8(p))
	}
}

// Buffer is the plane store of a panel. The planes are allocated once and
// never resized.
type Buffer struct {
	planes   [2][]byte
	inverted [2]bool
}

// NewBuffer allocates the planes described by g. inverted records, per plane,
// whether a painted pixel is stored as a 0 bit. The planes start cleared.
func NewBuffer(g Geometry, inverted [2]bool) *Buffer {
	b := &Buffer{inverted: inverted}
	b.planes[BlackPlane] = make([]byte, g.PlaneSize())
	if g.Color {
		b.planes[ColorPlane] = make([]byte, g.PlaneSize())
	}
	b.Clear()
	return b
}

// Len returns the size of one plane in bytes.
func (b *Buffer) Len() int {
	return len(b.planes[BlackPlane])
}

// HasColor reports whether the color plane exists.
func (b *Buffer) HasColor() bool {
	return b.planes[ColorPlane] != nil
}

// Inverted returns the polarity of plane p.
func (b *Buffer) Inverted(p Plane) bool {
	return b.inverted[p]
}

// Clear fills each plane with its background pattern: 0xFF for inverted
// planes, 0x00 otherwise.
func (b *Buffer) Clear() {
	for p, buf := range b.planes {
		fill := byte(0x00)
		if b.inverted[p] {
			fill = 0xFF
		}
		for i := range buf {
			buf[i] = fill
		}
	}
}

// SetBit paints one pixel on plane p. Setting a bit inactive is a no-op;
// pixels only return to the background through Clear.
func (b *Buffer) SetBit(p Plane, offset int, bit uint, active bool) {
	if !active {
		return
	}
	mask := byte(1) << bit
	if b.inverted[p] {
		b.planes[p][offset] &^= mask
	} else {
		b.planes[p][offset] |= mask
	}
}

// Active reports whether the pixel at offset/bit is painted on plane p. A
// missing color plane is never active.
func (b *Buffer) Active(p Plane, offset int, bit uint) bool {
	buf := b.planes[p]
	if buf == nil {
		return false
	}
	set := buf[offset]&(1<<bit) != 0
	return set != b.inverted[p]
}

// Byte returns byte i of plane p as stored.
func (b *Buffer) Byte(p Plane, i int) byte {
	return b.planes[p][i]
}
