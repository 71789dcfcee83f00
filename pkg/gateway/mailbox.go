// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package gateway

import "sync/atomic"

// Mailbox is the single-slot, latest-wins handoff between the receive
// pump and the forwarder. A new reading overwrites any not-yet-consumed
// one; there is no queue and no back-pressure. Put and Take are each
// single atomic swaps, so the consumer can never observe a half-updated
// reading.
type Mailbox struct {
	slot atomic.Pointer[Reading]
}

// Put stages a reading, replacing whatever was pending.
func (m *Mailbox) Put(r *Reading) {
	m.slot.Store(r)
}

// Take removes and returns the pending reading, or nil when the slot is
// empty. The caller owns the returned reading.
func (m *Mailbox) Take() *Reading {
	return m.slot.Swap(nil)
}

// Pending reports whether a reading is staged.
func (m *Mailbox) Pending() bool {
	return m.slot.Load() != nil
}
