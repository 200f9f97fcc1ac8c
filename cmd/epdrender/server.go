// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/GermanBionicSystems/epaper/epd"
	"github.com/GermanBionicSystems/epaper/screen2d"
)

// app owns the panel. The scheduler and the HTTP handlers share it, so every
// access goes through mu.
type app struct {
	mu  sync.Mutex
	dev *epd.Dev
	// preview, when set, echoes every refresh to the terminal.
	preview *screen2d.Dev
}

// update redraws the content and refreshes the panel.
func (a *app) update() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.dev.Update(); err != nil {
		return err
	}
	return a.echo()
}

// clear refreshes the panel blank.
func (a *app) clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dev.Clear()
	if err := a.dev.Display(); err != nil {
		return err
	}
	return a.echo()
}

func (a *app) halt() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.preview != nil {
		if err := a.preview.Halt(); err != nil {
			return err
		}
	}
	return a.dev.Halt()
}

func (a *app) echo() error {
	if a.preview == nil {
		return nil
	}
	return a.preview.Draw(a.dev.Bounds(), a.dev, image.Point{})
}

func (a *app) servePreview(c *fiber.Ctx) error {
	a.mu.Lock()
	img := snapshot(a.dev)
	a.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to encode image")
	}
	c.Set("Content-Type", "image/png")
	c.Set("Content-Length", strconv.Itoa(buf.Len()))
	return c.Send(buf.Bytes())
}

func (a *app) serveRefresh(c *fiber.Ctx) error {
	if err := a.update(); err != nil {
		log.Printf("refresh: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	return c.SendString("Display refreshed")
}

func (a *app) serveClear(c *fiber.Ctx) error {
	if err := a.clear(); err != nil {
		log.Printf("clear: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	return c.SendString("Display cleared")
}

func newServer(a *app) *fiber.App {
	srv := fiber.New(fiber.Config{DisableStartupMessage: true})
	srv.Get("/preview.png", a.servePreview)
	srv.Post("/refresh", a.serveRefresh)
	srv.Post("/clear", a.serveClear)
	return srv
}
