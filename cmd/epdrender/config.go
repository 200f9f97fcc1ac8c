// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/GermanBionicSystems/epaper/ssd1680"
)

// Pins names the GPIO lines wired to the panel, as known to gpioreg. Reset
// and Busy may be left empty when not wired.
type Pins struct {
	DC    string `yaml:"dc"`
	CS    string `yaml:"cs"`
	Reset string `yaml:"reset"`
	Busy  string `yaml:"busy"`
}

// Config is the epdrender configuration file.
type Config struct {
	// Model is the panel preset, "thinkink213" or "waveshare213v4".
	Model string `yaml:"model"`
	// SPI is the spireg port name. Empty selects the first port.
	SPI string `yaml:"spi"`

	Pins Pins `yaml:"pins"`

	// Refresh is a cron schedule, e.g. "*/30 * * * *".
	Refresh string `yaml:"refresh"`
	// Listen is the HTTP control address. Empty disables the server.
	Listen string `yaml:"listen"`

	// Text lines are laid out top to bottom. The first one is the title.
	Text []string `yaml:"text"`
	// SVG is an icon drawn left of the text.
	SVG string `yaml:"svg"`
	// FontSize is the body text size in points.
	FontSize float64 `yaml:"font_size"`
	// Invert flips the bytes sent to the panel.
	Invert bool `yaml:"invert"`
}

// DefaultConfig returns the configuration for an Adafruit ThinkInk panel on
// the e-Paper HAT pinout.
func DefaultConfig() *Config {
	return &Config{
		Model: "thinkink213",
		Pins: Pins{
			DC:    "GPIO25",
			CS:    "GPIO8",
			Reset: "GPIO17",
			Busy:  "GPIO24",
		},
		Refresh:  "*/30 * * * *",
		Listen:   "127.0.0.1:8080",
		Text:     []string{"Hello from periph!"},
		FontSize: 16,
	}
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Pins.DC == "" {
		c.Pins.DC = d.Pins.DC
	}
	if c.Pins.CS == "" {
		c.Pins.CS = d.Pins.CS
	}
	if c.Refresh == "" {
		c.Refresh = d.Refresh
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var m ssd1680.Model
	if err := m.Set(c.Model); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.Refresh); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", c.Refresh, err)
	}
	return nil
}

// Load reads the YAML configuration at path. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}
