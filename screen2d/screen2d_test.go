// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 2, Y: 2, W: &out})

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{A: 255})
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}

	black := ansi256.Default.Block(color.NRGBA{A: 255})
	white := ansi256.Default.Block(color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	red := ansi256.Default.Block(color.NRGBA{R: 255, A: 255})
	want := "\033[0m" + black + white + "\033[0m\n" + red + black + "\033[0m\n"
	if got := out.String(); got != want {
		t.Errorf("Draw() = %q, want %q", got, want)
	}
}

func TestDrawStep(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 4, Y: 4, Step: 2, W: &out})

	if err := d.Draw(d.Bounds(), image.NewUniform(color.White), image.Point{}); err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(out.String(), "\n"); got != 2 {
		t.Errorf("%d rows rendered, want 2", got)
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 1, Y: 1, W: &out})

	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "\033[0m\n" {
		t.Errorf("Halt() = %q", got)
	}
	if got := d.String(); got != "Screen2D{1, 1}" {
		t.Errorf("String() = %q", got)
	}
}
