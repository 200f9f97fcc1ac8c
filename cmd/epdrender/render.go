// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/epaper/epd"
)

const padding = 4

var (
	red   = color.NRGBA{R: 255, A: 255}
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// renderer lays out the configured content on a canvas the size of the panel.
type renderer struct {
	text  []string
	title font.Face
	body  font.Face
	icon  *oksvg.SvgIcon
	now   func() time.Time
}

func newRenderer(cfg *Config) (*renderer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	r := &renderer{
		text:  cfg.Text,
		title: truetype.NewFace(f, &truetype.Options{Size: cfg.FontSize * 1.25, Hinting: font.HintingFull}),
		body:  truetype.NewFace(f, &truetype.Options{Size: cfg.FontSize, Hinting: font.HintingFull}),
		now:   time.Now,
	}
	if cfg.SVG != "" {
		in, err := os.Open(cfg.SVG)
		if err != nil {
			return nil, err
		}
		defer in.Close()
		if r.icon, err = oksvg.ReadIconStream(in); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.SVG, err)
		}
	}
	return r, nil
}

// render lays the text out right of the icon. The refresh time goes in red in
// the bottom right corner.
func (r *renderer) render(b image.Rectangle) image.Image {
	w, h := b.Dx(), b.Dy()
	dc := gg.NewContext(w, h)
	dc.SetColor(white)
	dc.Clear()

	x := float64(padding)
	if r.icon != nil {
		size := h - 2*padding
		dc.DrawImage(r.rasterize(size), padding, padding)
		x += float64(size + padding)
	}

	dc.SetColor(black)
	y := float64(padding)
	for i, line := range r.text {
		face := r.body
		if i == 0 {
			face = r.title
		}
		dc.SetFontFace(face)
		_, th := dc.MeasureString(line)
		y += th
		dc.DrawString(line, x, y)
		y += th / 2
	}

	dc.SetFontFace(r.body)
	dc.SetColor(red)
	stamp := r.now().Format("2006-01-02 15:04")
	tw, _ := dc.MeasureString(stamp)
	dc.DrawString(stamp, float64(w)-tw-padding, float64(h-padding))
	return dc.Image()
}

func (r *renderer) rasterize(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r.icon.SetTarget(0, 0, float64(size), float64(size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	r.icon.Draw(dasher, 1.0)
	return img
}

// draw is the epd.Opts.Writer: the antialiased canvas is reduced to the three
// inks before reaching the planes.
func (r *renderer) draw(d *epd.Dev) {
	b := d.Bounds()
	src := r.render(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.SetPixel(x, y, quantize(src.At(x, y)))
		}
	}
}

// quantize maps c to white, black or red.
func quantize(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A < 0x80 {
		return white
	}
	if n.R >= 0x80 && n.G < 0x60 && n.B < 0x60 {
		return red
	}
	if luma := (299*int(n.R) + 587*int(n.G) + 114*int(n.B)) / 1000; luma < 0x80 {
		return black
	}
	return white
}

// snapshot copies what the planes currently hold.
func snapshot(d *epd.Dev) *image.NRGBA {
	b := d.Bounds()
	img := image.NewNRGBA(b)
	draw.Draw(img, b, d, b.Min, draw.Src)
	return img
}
