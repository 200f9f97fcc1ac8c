// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1680 drives e-paper panels built around the Solomon Systech
// SSD1680 controller, such as the Adafruit ThinkInk 2.13" tri-color and the
// Waveshare 2.13" V4.
//
// Every refresh starts from a hardware reset and replays the init script before
// the RAM is written. Afterwards the controller is left in deep sleep when a
// reset line can wake it up again; otherwise it only gets a software reset.
//
// A color is painted red only when its red channel is more than twice its
// green and blue channels. Greys and white stay blank, unlike drivers that
// paint any color with some red in it.
//
// Datasheet
//
// https://cdn-learn.adafruit.com/assets/assets/000/097/631/original/SSD1680_Datasheet.pdf
package ssd1680
