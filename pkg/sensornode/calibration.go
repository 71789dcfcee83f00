// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sensornode

import "math"

// The calibration gesture is the device held fully inverted: any
// accepted tilt in [170, 180) during the cold-boot detection window
// starts a calibration run.
const (
	gestureBandLow  = 170.0
	gestureBandHigh = 180.0
)

func isCalibrationGesture(tiltDeg float64) bool {
	if math.IsNaN(tiltDeg) {
		return false
	}
	return tiltDeg >= gestureBandLow && tiltDeg < gestureBandHigh
}
