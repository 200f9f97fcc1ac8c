// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func planeBytes(b *Buffer, p Plane) []byte {
	out := make([]byte, b.Len())
	for i := range out {
		out[i] = b.Byte(p, i)
	}
	return out
}

func TestBufferClear(t *testing.T) {
	g := Geometry{Width: 250, Height: 122, Color: true}

	for _, tc := range []struct {
		name      string
		inverted  [2]bool
		wantBlack byte
		wantColor byte
	}{
		{name: "default polarity", inverted: [2]bool{true, false}, wantBlack: 0xFF, wantColor: 0x00},
		{name: "both inverted", inverted: [2]bool{true, true}, wantBlack: 0xFF, wantColor: 0xFF},
		{name: "none inverted", inverted: [2]bool{false, false}, wantBlack: 0x00, wantColor: 0x00},
		{name: "color inverted", inverted: [2]bool{false, true}, wantBlack: 0x00, wantColor: 0xFF},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuffer(g, tc.inverted)
			if b.Len() != 4000 {
				t.Fatalf("Len() = %d, want 4000", b.Len())
			}

			// Dirty both planes, then clear twice.
			for i := 0; i < b.Len(); i += 7 {
				b.planes[BlackPlane][i] = 0x5A
				b.planes[ColorPlane][i] = 0xA5
			}
			b.Clear()
			once := [][]byte{planeBytes(b, BlackPlane), planeBytes(b, ColorPlane)}
			b.Clear()
			twice := [][]byte{planeBytes(b, BlackPlane), planeBytes(b, ColorPlane)}

			want := [][]byte{
				bytes.Repeat([]byte{tc.wantBlack}, 4000),
				bytes.Repeat([]byte{tc.wantColor}, 4000),
			}
			if diff := cmp.Diff(once, want); diff != "" {
				t.Errorf("Clear() difference (-got +want):\n%s", diff)
			}
			if diff := cmp.Diff(twice, once); diff != "" {
				t.Errorf("Clear() is not idempotent (-twice +once):\n%s", diff)
			}
		})
	}
}

func TestBufferNoColorPlane(t *testing.T) {
	b := NewBuffer(Geometry{Width: 8, Height: 8}, [2]bool{true, false})

	if b.HasColor() {
		t.Errorf("HasColor() = true for a single plane geometry")
	}
	if b.Active(ColorPlane, 0, 0) {
		t.Errorf("Active(ColorPlane) = true without a color plane")
	}
}

func TestBufferSetBit(t *testing.T) {
	for _, tc := range []struct {
		name     string
		inverted bool
		active   bool
		want     byte
	}{
		{name: "normal, active", inverted: false, active: true, want: 0b0001_0000},
		{name: "normal, inactive", inverted: false, active: false, want: 0x00},
		{name: "inverted, active", inverted: true, active: true, want: 0b1110_1111},
		{name: "inverted, inactive", inverted: true, active: false, want: 0xFF},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuffer(Geometry{Width: 1, Height: 8}, [2]bool{tc.inverted, false})

			b.SetBit(BlackPlane, 0, 4, tc.active)

			if got := b.Byte(BlackPlane, 0); got != tc.want {
				t.Errorf("Byte() = %#08b, want %#08b", got, tc.want)
			}
			if got := b.Active(BlackPlane, 0, 4); got != tc.active {
				t.Errorf("Active() = %v, want %v", got, tc.active)
			}
		})
	}
}

func TestBufferSetBitNeverClears(t *testing.T) {
	b := NewBuffer(Geometry{Width: 1, Height: 8}, [2]bool{false, false})

	b.SetBit(BlackPlane, 0, 2, true)
	b.SetBit(BlackPlane, 0, 2, false)

	if !b.Active(BlackPlane, 0, 2) {
		t.Errorf("SetBit(active=false) cleared a painted pixel")
	}
}
