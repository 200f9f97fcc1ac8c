// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper is a container for e-paper panel drivers.
//
// The epd package holds the controller independent engine; controller
// families such as ssd1680 plug into it.
package epaper
