// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/Knetic/govaluate"
)

// Connectivity brings the uplink network up and down around each
// forward. On hardware where the two radio roles share one chip this is
// the Wi-Fi association; a nil Connectivity means the network is always
// there.
type Connectivity interface {
	Up() error
	Down()
}

// EvalGravity runs the user's calibration expression with tilt and temp
// bound and rounds the result to 3 decimals.
func EvalGravity(expression string, tilt, temp float64) (float64, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return 0, fmt.Errorf("gateway: parse calibration expression: %v", err)
	}
	result, err := expr.Evaluate(map[string]interface{}{
		"tilt": tilt,
		"temp": temp,
	})
	if err != nil {
		return 0, fmt.Errorf("gateway: evaluate calibration expression: %v", err)
	}
	value, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("gateway: calibration expression yielded %T, not a number", result)
	}
	return math.Round(value*1000) / 1000, nil
}

// ForwarderConfig carries the forwarder's endpoint and policy knobs.
type ForwarderConfig struct {
	// EndpointURL receives the JSON payload via a single POST per
	// reading; failures are accepted as data loss.
	EndpointURL string

	// Expression is the optional gravity calibration expression. Empty
	// disables the derived field.
	Expression string

	// PollInterval is the mailbox polling cadence. Zero means 100ms.
	PollInterval time.Duration

	// Client defaults to an http.Client with a 10 second timeout.
	Client *http.Client

	// Connectivity may be nil.
	Connectivity Connectivity
}

// pauser is the slice of Receiver the forwarder needs.
type pauser interface {
	Pause()
	Resume()
}

// Forwarder polls the mailbox and relays each staged reading to the
// logging endpoint, pausing the receiver for the duration of each
// forward because the radio roles are time-exclusive.
type Forwarder struct {
	cfg      ForwarderConfig
	mailbox  *Mailbox
	receiver pauser
}

// NewForwarder wires a forwarder to its mailbox and receiver.
func NewForwarder(cfg ForwarderConfig, mailbox *Mailbox, receiver pauser) *Forwarder {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Forwarder{cfg: cfg, mailbox: mailbox, receiver: receiver}
}

// Run polls until the context is cancelled.
func (f *Forwarder) Run(ctx context.Context) {
	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if f.mailbox.Pending() {
				f.ForwardPending()
			}
		}
	}
}

// ForwardPending takes the staged reading, if any, and relays it once.
// All failures are logged and dropped; the next reading supersedes.
func (f *Forwarder) ForwardPending() {
	reading := f.mailbox.Take()
	if reading == nil {
		return
	}

	f.receiver.Pause()
	defer f.receiver.Resume()

	if f.cfg.Connectivity != nil {
		if err := f.cfg.Connectivity.Up(); err != nil {
			log.Printf("gateway: connectivity: %v", err)
			return
		}
		defer f.cfg.Connectivity.Down()
	}

	f.annotateGravity(reading)
	if err := f.post(reading); err != nil {
		log.Printf("gateway: forward: %v", err)
	}
}

// annotateGravity adds the derived gravity field when both inputs and an
// expression are present. Any evaluation failure just omits the field.
func (f *Forwarder) annotateGravity(r *Reading) {
	if f.cfg.Expression == "" || r.Angle == nil || r.Temp == nil {
		return
	}
	gravity, err := EvalGravity(f.cfg.Expression, *r.Angle, *r.Temp)
	if err != nil {
		log.Printf("gateway: %v", err)
		return
	}
	r.Gravity = &gravity
	r.GravityUnit = "G"
}

func (f *Forwarder) post(r *Reading) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	resp, err := f.cfg.Client.Post(f.cfg.EndpointURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}
