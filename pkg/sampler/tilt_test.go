// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sampler

import (
	"errors"
	"math"
	"testing"
)

// fakeAccel scripts a sequence of acceleration vectors.
type fakeAccel struct {
	initErr  error
	vectors  [][3]float64
	i        int
	notReady bool
	temp     float64
	sleeps   int
}

func (f *fakeAccel) Init() error { return f.initErr }

func (f *fakeAccel) DataReady() (bool, error) { return !f.notReady, nil }

func (f *fakeAccel) Acceleration() (float64, float64, float64, error) {
	if f.i >= len(f.vectors) {
		return 0, 0, 0, errors.New("out of samples")
	}
	v := f.vectors[f.i]
	f.i++
	return v[0], v[1], v[2], nil
}

func (f *fakeAccel) Temperature() (float64, error) { return f.temp, nil }

func (f *fakeAccel) Sleep() { f.sleeps++ }

// vecFor returns an acceleration vector whose tilt angle is deg.
func vecFor(deg float64) [3]float64 {
	rad := deg * math.Pi / 180
	return [3]float64{math.Sin(rad), 0, math.Cos(rad)}
}

func approx(got, want float64) bool { return math.Abs(got-want) < 1e-9 }

func TestTiltAngle(t *testing.T) {
	tests := []struct {
		name       string
		ax, ay, az float64
		want       float64
	}{
		{"zero vector", 0, 0, 0, 0},
		{"level", 0, 0, 1, 0},
		{"inverted", 0, 0, -1, 180},
		{"on side", 1, 0, 0, 90},
		{"45 degrees", 1, 0, 1, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TiltAngle(tt.ax, tt.ay, tt.az); !approx(got, tt.want) {
				t.Errorf("TiltAngle(%v, %v, %v) = %v, want %v", tt.ax, tt.ay, tt.az, got, tt.want)
			}
		})
	}
}

func TestTiltSamplerMedianWindow(t *testing.T) {
	dev := &fakeAccel{
		vectors: [][3]float64{
			vecFor(25.1), vecFor(25.5), vecFor(25.2), vecFor(25.4), vecFor(25.3),
		},
		temp: 21.0,
	}
	s := NewTiltSampler(dev, 5)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	s.Start()

	for i := 0; i < 5; i++ {
		if !s.Pending() {
			t.Fatalf("not pending before sample %d", i)
		}
		if !s.Sample() {
			t.Fatalf("sample %d made no progress", i)
		}
	}
	if !s.Ready() || s.Pending() {
		t.Fatal("sampler should be ready after a full window")
	}
	if got := s.TiltDeg(); !approx(got, 25.3) {
		t.Errorf("TiltDeg() = %v, want 25.3", got)
	}
	if got := s.TempC(); got != 21.0 {
		t.Errorf("TempC() = %v, want 21.0", got)
	}
	// The motion sensor goes to sleep as soon as acquisition completes.
	if dev.sleeps != 1 {
		t.Errorf("sleeps = %d, want 1", dev.sleeps)
	}
}

func TestTiltSamplerRejectsDegenerateReadings(t *testing.T) {
	dev := &fakeAccel{
		vectors: [][3]float64{
			{0, 0, 0},    // 0 degrees: mis-latched read
			{1, 0, 0},    // exactly 90: mis-latched read
			{0, 0, 1},    // exactly 0: mis-latched read
			vecFor(25.0), // accepted
		},
	}
	s := NewTiltSampler(dev, 3)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	s.Start()

	for i := 0; i < 3; i++ {
		if s.Sample() {
			t.Fatalf("degenerate reading %d accepted", i)
		}
	}
	if !s.Sample() {
		t.Fatal("valid reading rejected")
	}
	if got := s.Latest(); !approx(got, 25.0) {
		t.Errorf("Latest() = %v, want 25.0", got)
	}
}

func TestTiltSamplerDegradedResult(t *testing.T) {
	// Window of 5 never fills; the result is the latest accepted sample.
	dev := &fakeAccel{vectors: [][3]float64{vecFor(30), vecFor(31)}}
	s := NewTiltSampler(dev, 5)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	s.Start()
	s.Sample()
	s.Sample()

	if got := s.TiltDeg(); !approx(got, 31) {
		t.Errorf("degraded TiltDeg() = %v, want 31", got)
	}
	if !math.IsNaN(s.TempC()) {
		t.Error("temperature should be NaN before the window fills")
	}
}

func TestTiltSamplerNoSamplesIsNaN(t *testing.T) {
	dev := &fakeAccel{}
	s := NewTiltSampler(dev, 5)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	s.Start()
	if !math.IsNaN(s.TiltDeg()) {
		t.Error("TiltDeg should be NaN with zero accepted samples")
	}
}

func TestTiltSamplerBeginFailure(t *testing.T) {
	dev := &fakeAccel{initErr: errors.New("i2c nack")}
	s := NewTiltSampler(dev, 5)
	if err := s.Begin(); err == nil {
		t.Fatal("expected Begin failure")
	}

	// A dead sampler never wedges the loop: it is Ready with no result.
	s.Start()
	if s.Pending() {
		t.Error("dead sampler reports pending")
	}
	if !s.Ready() {
		t.Error("dead sampler should be ready")
	}
	if s.Sample() {
		t.Error("dead sampler made progress")
	}
	if !math.IsNaN(s.TiltDeg()) {
		t.Error("dead sampler should yield NaN")
	}

	// A retried Begin revives it.
	dev.initErr = nil
	if err := s.Begin(); err != nil {
		t.Fatalf("retried Begin failed: %v", err)
	}
	s.Start()
	if !s.Pending() {
		t.Error("revived sampler should be pending")
	}
}

func TestTiltSamplerGatedOnDataReady(t *testing.T) {
	dev := &fakeAccel{vectors: [][3]float64{vecFor(20)}, notReady: true}
	s := NewTiltSampler(dev, 1)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	s.Start()

	if s.Sample() {
		t.Error("sampled while data-ready was deasserted")
	}
	dev.notReady = false
	if !s.Sample() {
		t.Error("no progress after data-ready asserted")
	}
}
