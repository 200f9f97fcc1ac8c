// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
model: waveshare213v4
spi: SPI0.0
pins:
  dc: GPIO22
  cs: GPIO8
  busy: GPIO24
refresh: "0 * * * *"
listen: ""
text:
  - Meeting room 2
  - Free until 14:00
svg: /etc/epdrender/logo.svg
invert: true
`)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := &Config{
		Model:    "waveshare213v4",
		SPI:      "SPI0.0",
		Pins:     Pins{DC: "GPIO22", CS: "GPIO8", Busy: "GPIO24"},
		Refresh:  "0 * * * *",
		Text:     []string{"Meeting room 2", "Free until 14:00"},
		SVG:      "/etc/epdrender/logo.svg",
		FontSize: 16,
		Invert:   true,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Load() difference (-got +want):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if diff := cmp.Diff(got, DefaultConfig()); diff != "" {
		t.Errorf("Load() difference (-got +want):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "unknown model", content: "model: inky\n", wantErr: "unknown model"},
		{name: "bad schedule", content: "refresh: every minute\n", wantErr: "invalid refresh schedule"},
		{name: "bad yaml", content: "text: [unterminated\n", wantErr: "config.yaml"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tc.wantErr)
			}
		})
	}

	if _, err := Load(""); err == nil {
		t.Errorf("Load(\"\") succeeded")
	}
}
