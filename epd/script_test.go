// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// replayTrace runs s and returns the calls made, in order.
func replayTrace(s Script) ([]string, error) {
	var trace []string
	err := s.Replay(
		func() { trace = append(trace, "busy") },
		func(d time.Duration) { trace = append(trace, "sleep "+d.String()) },
		func(op byte, payload []byte) {
			trace = append(trace, fmt.Sprintf("cmd 0x%02x %x", op, payload))
		},
	)
	return trace, err
}

func TestScriptReplay(t *testing.T) {
	for _, tc := range []struct {
		name   string
		script Script
		want   []string
	}{
		{
			name:   "reset, delay, data entry",
			script: Script{0x12, 0, 0xFF, 20, 0x11, 1, 0x03, 0xFE},
			want: []string{
				"cmd 0x12 ",
				"busy",
				"sleep 20ms",
				"cmd 0x11 03",
			},
		},
		{
			name:   "stops at sentinel",
			script: Script{0x3C, 1, 0x05, 0xFE, 0x12, 0, 0xFE},
			want:   []string{"cmd 0x3c 05"},
		},
		{
			name:   "sentinel only",
			script: Script{0xFE},
		},
		{
			name:   "zero delay",
			script: Script{0xFF, 0, 0xFE},
			want:   []string{"busy", "sleep 0s"},
		},
		{
			name:   "multi byte payload",
			script: Script{0x04, 3, 0x41, 0x00, 0x32, 0x4F, 2, 0, 0, 0xFE},
			want:   []string{"cmd 0x04 410032", "cmd 0x4f 0000"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := replayTrace(tc.script)
			if err != nil {
				t.Fatalf("Replay() failed: %v", err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Replay() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestScriptReplayMissing(t *testing.T) {
	got, err := replayTrace(nil)

	if !errors.Is(err, ErrMissingScript) {
		t.Errorf("Replay() error = %v, want %v", err, ErrMissingScript)
	}
	if len(got) != 0 {
		t.Errorf("Replay() made calls without a script: %q", got)
	}
}

func TestScriptReplayOversized(t *testing.T) {
	s := Script{0x32, MaxScriptArgs + 1}
	s = append(s, make([]byte, MaxScriptArgs+1)...)
	s = append(s, ScriptEnd)

	defer func() {
		if recover() == nil {
			t.Errorf("Replay() accepted %d arguments", MaxScriptArgs+1)
		}
	}()
	_, _ = replayTrace(s)
}

func TestScriptValidate(t *testing.T) {
	full := Script{0x32, MaxScriptArgs}
	full = append(full, make([]byte, MaxScriptArgs)...)
	full = append(full, ScriptEnd)

	oversized := Script{0x32, MaxScriptArgs + 1}
	oversized = append(oversized, make([]byte, MaxScriptArgs+1)...)
	oversized = append(oversized, ScriptEnd)

	for _, tc := range []struct {
		name    string
		script  Script
		wantErr string
	}{
		{name: "valid", script: Script{0x12, 0, 0xFF, 20, 0x11, 1, 0x03, 0xFE}},
		{name: "full scratch", script: full},
		{name: "nil", wantErr: "no init script"},
		{name: "empty", script: Script{}, wantErr: "not terminated"},
		{name: "no sentinel", script: Script{0x12, 0}, wantErr: "not terminated"},
		{name: "no count", script: Script{0x12}, wantErr: "command 0x12 at 0 lacks an argument count"},
		{name: "truncated", script: Script{0x11, 2, 0x03}, wantErr: "command 0x11 is truncated"},
		{name: "oversized", script: oversized, wantErr: "command 0x32 has 65 arguments, limit is 64"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.script.Validate()
			switch {
			case tc.wantErr == "" && err != nil:
				t.Errorf("Validate() failed: %v", err)
			case tc.wantErr != "" && err == nil:
				t.Errorf("Validate() succeeded, want error containing %q", tc.wantErr)
			case tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr):
				t.Errorf("Validate() error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}
