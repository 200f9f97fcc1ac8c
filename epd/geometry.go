// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"fmt"
	"image"
)

// Geometry describes the pixel layout of a panel.
type Geometry struct {
	// Width and Height in pixels, as seen by drawing code.
	Width  int
	Height int
	// Color is set when the panel has a second (accent color) plane.
	Color bool
}

// PaddedHeight returns the height rounded up to the next multiple of 8. Each
// column of the panel occupies a whole number of bytes.
func (g Geometry) PaddedHeight() int {
	return (g.Height + 7) / 8 * 8
}

// PlaneSize returns the number of bytes of one plane. Both planes have the
// same size.
func (g Geometry) PlaneSize() int {
	return g.Width * g.PaddedHeight() / 8
}

// Bounds returns the drawable area.
func (g Geometry) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// OffsetAndBit maps a pixel to its byte offset and bit index within a plane.
// ok is false when the pixel lies outside of the panel.
//
// Addressing is column-major with the X axis mirrored; bit 7 is the topmost
// row of each 8-row band. This follows the order in which the SSD1680 RAM
// counters advance with data entry mode 0x03 and must be re-derived for
// controllers with a different RAM addressing mode.
func (g Geometry) OffsetAndBit(x, y int) (offset int, bit uint, ok bool) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0, 0, false
	}
	offset = ((g.Width-1-x)*g.PaddedHeight() + y) / 8
	bit = uint(7 - y%8)
	return offset, bit, true
}

func (g Geometry) String() string {
	if g.Color {
		return fmt.Sprintf("%dx%d+color", g.Width, g.Height)
	}
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
