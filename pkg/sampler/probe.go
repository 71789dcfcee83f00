// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package sampler

import (
	"math"
	"time"
)

// Plausibility bounds for probe readings; anything outside is treated as
// a failed conversion and discarded.
const (
	probeMinC = -100
	probeMaxC = 150
)

// Thermometer is the hardware under a ProbeSampler: a dedicated
// temperature sensor with a known conversion latency.
type Thermometer interface {
	Init() error
	// Convert triggers a conversion without waiting for it.
	Convert() error
	// ConversionTime is the settling time for the configured resolution.
	ConversionTime() time.Duration
	ReadTemperature() (float64, error)
	Sleep()
}

// ProbeSampler runs one timed conversion per wake cycle. Sample is a
// no-op until the conversion latency has elapsed since Start.
type ProbeSampler struct {
	dev     Thermometer
	state   State
	started time.Time
	temp    float64
	begun   bool
	now     func() time.Time
}

// NewProbeSampler wraps a thermometer. now may be nil, defaulting to
// time.Now.
func NewProbeSampler(dev Thermometer, now func() time.Time) *ProbeSampler {
	if now == nil {
		now = time.Now
	}
	return &ProbeSampler{dev: dev, temp: math.NaN(), now: now}
}

// Begin claims the probe; failure leaves it dead until retried.
func (p *ProbeSampler) Begin() error {
	if err := p.dev.Init(); err != nil {
		p.begun = false
		return err
	}
	p.begun = true
	p.state = StateIdle
	return nil
}

// Start triggers a new conversion and records the start timestamp.
func (p *ProbeSampler) Start() {
	p.temp = math.NaN()
	if !p.begun {
		return
	}
	if err := p.dev.Convert(); err != nil {
		// Conversion never started; stay idle so Ready holds.
		return
	}
	p.started = p.now()
	p.state = StateAcquiring
}

// Sample reads the result once the conversion latency has elapsed.
func (p *ProbeSampler) Sample() bool {
	if p.state != StateAcquiring {
		return false
	}
	if p.now().Sub(p.started) < p.dev.ConversionTime() {
		return false
	}
	if t, err := p.dev.ReadTemperature(); err == nil && t > probeMinC && t < probeMaxC {
		p.temp = t
	}
	p.state = StateReady
	return true
}

// Pending reports whether a conversion is still settling.
func (p *ProbeSampler) Pending() bool {
	return p.begun && p.state == StateAcquiring
}

// Ready is the inverse of Pending.
func (p *ProbeSampler) Ready() bool { return !p.Pending() }

// Sleep powers the probe down. Idempotent.
func (p *ProbeSampler) Sleep() {
	if p.begun {
		p.dev.Sleep()
	}
	p.state = StateIdle
}

// TempC returns the converted temperature, NaN when the conversion
// failed or never completed.
func (p *ProbeSampler) TempC() float64 { return p.temp }
