// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sampler

import "math"

// Accelerometer is the hardware under a TiltSampler: a three-axis motion
// sensor with a data-ready signal and an on-die thermometer.
type Accelerometer interface {
	Init() error
	DataReady() (bool, error)
	// Acceleration returns the three axis readings in any consistent
	// unit; the tilt angle is scale invariant.
	Acceleration() (ax, ay, az float64, err error)
	Temperature() (float64, error)
	Sleep()
}

// TiltAngle computes device inclination in degrees from a three-axis
// acceleration vector. An all-zero vector yields 0.
func TiltAngle(ax, ay, az float64) float64 {
	if ax == 0 && ay == 0 && az == 0 {
		return 0
	}
	return math.Acos(az/math.Sqrt(ax*ax+ay*ay+az*az)) * 180 / math.Pi
}

// acceptTilt rejects the two known degenerate outputs of a mis-latched
// accelerometer read: exactly 0 and exactly 90 degrees.
func acceptTilt(deg float64) bool {
	return deg > 0 && deg != 90
}

// TiltSampler measures tilt as the median of a fixed window of accepted
// samples, gated on the accelerometer's data-ready signal. Temperature
// is read once, at the moment the window fills.
type TiltSampler struct {
	dev    Accelerometer
	window *Window
	state  State
	temp   float64
	latest float64
	begun  bool
}

// NewTiltSampler wraps an accelerometer with a median window of
// windowSize accepted samples.
func NewTiltSampler(dev Accelerometer, windowSize int) *TiltSampler {
	return &TiltSampler{
		dev:    dev,
		window: NewWindow(windowSize),
		temp:   math.NaN(),
		latest: math.NaN(),
	}
}

// Begin initializes the accelerometer. On failure the sampler stays dead
// until Begin is retried.
func (t *TiltSampler) Begin() error {
	if err := t.dev.Init(); err != nil {
		t.begun = false
		return err
	}
	t.begun = true
	t.state = StateIdle
	return nil
}

// Start clears the prior result and begins a new acquisition window.
func (t *TiltSampler) Start() {
	t.window.Reset()
	t.temp = math.NaN()
	t.latest = math.NaN()
	if !t.begun {
		return
	}
	t.state = StateAcquiring
}

// Sample takes at most one reading, gated on the data-ready signal, and
// reports whether a sample was accepted. When the window fills it reads
// the die temperature and puts the sensor back to sleep immediately.
func (t *TiltSampler) Sample() bool {
	if !t.begun || t.state != StateAcquiring {
		return false
	}
	ready, err := t.dev.DataReady()
	if err != nil || !ready {
		return false
	}
	ax, ay, az, err := t.dev.Acceleration()
	if err != nil {
		return false
	}

	tilt := TiltAngle(ax, ay, az)
	if !acceptTilt(tilt) {
		return false
	}
	t.window.Add(tilt)
	t.latest = tilt

	if t.window.Full() {
		if temp, err := t.dev.Temperature(); err == nil {
			t.temp = temp
		}
		t.dev.Sleep()
		t.state = StateReady
	}
	return true
}

// Pending reports whether samples are still outstanding.
func (t *TiltSampler) Pending() bool {
	return t.begun && t.state == StateAcquiring
}

// Ready is the inverse of Pending: a dead sampler reports ready with a
// NaN result so the control loop never waits on it.
func (t *TiltSampler) Ready() bool { return !t.Pending() }

// Sleep puts the accelerometer into its lowest-power mode.
func (t *TiltSampler) Sleep() {
	if t.begun {
		t.dev.Sleep()
	}
	t.state = StateIdle
}

// TiltDeg returns the filtered tilt: the window median when full, the
// latest accepted sample when the wake timeout cut acquisition short,
// NaN when nothing was accepted.
func (t *TiltSampler) TiltDeg() float64 { return t.window.Result() }

// Latest returns the most recently accepted single sample, NaN if none.
// The calibration gesture detector watches this rather than the median.
func (t *TiltSampler) Latest() float64 { return t.latest }

// TempC returns the die temperature captured when the window filled,
// NaN otherwise.
func (t *TiltSampler) TempC() float64 { return t.temp }
