// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Radio is the sensor node's transmit path. The radio is kept down
// between wake cycles; Up brings it up with a bounded retry loop, Send
// transmits one frame to the fixed peer, Down tears the radio back down
// to conserve power. Up/Down are cheap enough to run every cycle.
type Radio struct {
	open func() (Conn, error)
	peer Addr
	conn Conn
}

// NewRadio creates a radio over the given transport opener, paired to a
// fixed peer address.
func NewRadio(open func() (Conn, error), peer Addr) *Radio {
	return &Radio{open: open, peer: peer}
}

// Up brings the radio up, retrying with exponential backoff until the
// timeout elapses. If the radio never becomes ready the caller abandons
// transmission for this cycle.
func (r *Radio) Up(timeout time.Duration) error {
	if r.conn != nil {
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		conn, err := r.open()
		if err != nil {
			return err
		}
		r.conn = conn
		return nil
	}, b)
}

// Send frames the payload for the fixed peer and writes it once. No
// acknowledgement is awaited; delivery is best effort.
func (r *Radio) Send(payload []byte) error {
	if r.conn == nil {
		return fmt.Errorf("link: radio is down")
	}
	frame, err := Frame(r.peer, payload)
	if err != nil {
		return err
	}
	if _, err := r.conn.Write(frame); err != nil {
		return fmt.Errorf("link: send failed: %v", err)
	}
	return nil
}

// Down powers the radio down. Idempotent.
func (r *Radio) Down() {
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}
