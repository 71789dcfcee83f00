// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package sampler defines the non-blocking acquisition contract shared by
// every physical sensor on the node, plus the tilt and thermal-probe
// implementations.
//
// A sampler is a small state machine: Idle until Start, Acquiring while
// samples are outstanding, Ready once enough valid samples or the
// required settling time have elapsed. Sample never blocks for longer
// than a single bus transaction, so the control loop can interleave
// several samplers and still honor its wake timeout.
package sampler

// State of a sampler's acquisition cycle.
type State uint8

const (
	StateIdle State = iota // before Start, or after Sleep
	StateAcquiring
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateReady:
		return "ready"
	default:
		return "invalid"
	}
}

// Sampler is the uniform contract over one physical sensor.
type Sampler interface {
	// Begin claims and initializes the underlying sensor. Failure leaves
	// the sampler non-functional until Begin is retried; no result is
	// ever produced by a sampler whose Begin failed.
	Begin() error

	// Start clears any prior result and begins a new acquisition.
	Start()

	// Sample advances the acquisition without blocking; it reports
	// whether progress was made.
	Sample() bool

	// Pending reports whether the sampler is still acquiring.
	Pending() bool

	// Ready reports whether the sampler has stopped acquiring. A dead or
	// never-started sampler is Ready with no result, so a broken sensor
	// can never wedge the control loop.
	Ready() bool

	// Sleep places the sensor into its lowest-power mode. Idempotent.
	Sleep()
}
