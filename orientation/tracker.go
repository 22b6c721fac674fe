// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package orientation keeps the display upright as the board is turned.
//
// A Tracker classifies raw accelerometer samples into a Sensor orientation.
// An Adapter polls the accelerometer, maps the orientation to the display's
// and rotates and redraws the display when it changed.
package orientation

import (
	"fmt"

	"periph.io/x/wioterminal/ili9341"
)

// Sensor is the orientation of the board as seen by the accelerometer.
type Sensor uint8

// Orientations. Unknown is reported while no single axis carries gravity,
// e.g. while the board is being turned.
const (
	Unknown Sensor = iota
	PortraitUp
	PortraitDown
	LandscapeUp
	LandscapeDown
	FaceUp
	FaceDown
)

var sensorNames = [...]string{"Unknown", "PortraitUp", "PortraitDown", "LandscapeUp", "LandscapeDown", "FaceUp", "FaceDown"}

func (s Sensor) String() string {
	if int(s) < len(sensorNames) {
		return sensorNames[s]
	}
	return fmt.Sprintf("Sensor(%d)", uint8(s))
}

// DefaultThreshold is the raw reading above which an axis is considered to
// carry gravity, calibrated on the board's LIS3DH at ±2g.
const DefaultThreshold = 3700

// Tracker classifies raw acceleration samples.
type Tracker struct {
	threshold int32
}

// NewTracker returns a Tracker for the given threshold. A threshold of 0
// selects DefaultThreshold.
func NewTracker(threshold int32) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{threshold: threshold}
}

// Threshold returns the classification threshold.
func (t *Tracker) Threshold() int32 {
	return t.threshold
}

// Update classifies one sample. Exactly one axis must be at or above the
// threshold; otherwise the orientation is Unknown.
//
// X runs along the long side of the screen, Y along the short side and Z out
// of the screen.
func (t *Tracker) Update(x, y, z int16) Sensor {
	ax, ay, az := t.over(x), t.over(y), t.over(z)
	switch {
	case ax && !ay && !az:
		if x > 0 {
			return PortraitUp
		}
		return PortraitDown
	case ay && !ax && !az:
		if y > 0 {
			return LandscapeUp
		}
		return LandscapeDown
	case az && !ax && !ay:
		if z > 0 {
			return FaceUp
		}
		return FaceDown
	default:
		return Unknown
	}
}

func (t *Tracker) over(v int16) bool {
	a := int32(v)
	if a < 0 {
		a = -a
	}
	return a >= t.threshold
}

// Map returns the display orientation that keeps the picture upright for s.
// Lying flat and Unknown have none.
func Map(s Sensor) (ili9341.Orientation, bool) {
	switch s {
	case LandscapeUp:
		return ili9341.LandscapeFlipped, true
	case LandscapeDown:
		return ili9341.Landscape, true
	case PortraitUp:
		return ili9341.Portrait, true
	case PortraitDown:
		return ili9341.PortraitFlipped, true
	default:
		return 0, false
	}
}
