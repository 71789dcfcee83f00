// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package gateway

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

// Stats counts receive-path events. Malformed frames are never surfaced
// to callers, only counted here.
type Stats struct {
	TotalFrames   uint64
	ValidReadings uint64
	LegacyFrames  uint64
	AddrMismatch  uint64
	DecodeErrors  uint64
	FramingErrors uint64
	DroppedPaused uint64
}

// Receiver pumps bytes off the link, deframes and decodes them, and
// stages decoded readings in the mailbox. One pump goroutine is the sole
// producer; the forwarder is the sole consumer.
type Receiver struct {
	conn    link.Conn
	addr    link.Addr
	mailbox *Mailbox

	paused atomic.Bool

	totalFrames   atomic.Uint64
	validReadings atomic.Uint64
	legacyFrames  atomic.Uint64
	addrMismatch  atomic.Uint64
	decodeErrors  atomic.Uint64
	framingErrors atomic.Uint64
	droppedPaused atomic.Uint64

	wg sync.WaitGroup
}

// NewReceiver creates a receiver pinned to the given link address. Frames
// addressed elsewhere are dropped.
func NewReceiver(conn link.Conn, addr link.Addr, mailbox *Mailbox) *Receiver {
	return &Receiver{conn: conn, addr: addr, mailbox: mailbox}
}

// Start launches the pump goroutine. It exits when the connection
// closes.
func (r *Receiver) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.pump()
	}()
}

// Stop closes the connection and waits for the pump to drain.
func (r *Receiver) Stop() {
	r.conn.Close()
	r.wg.Wait()
}

// Pause makes the receiver drop incoming frames until Resume. The two
// radio roles are time-exclusive on the target hardware: while the
// forwarder owns the network, the sensor-facing receiver cannot listen.
func (r *Receiver) Pause() { r.paused.Store(true) }

// Resume re-arms the receive path after forwarding completes.
func (r *Receiver) Resume() { r.paused.Store(false) }

// Snapshot returns the current counters.
func (r *Receiver) Snapshot() Stats {
	return Stats{
		TotalFrames:   r.totalFrames.Load(),
		ValidReadings: r.validReadings.Load(),
		LegacyFrames:  r.legacyFrames.Load(),
		AddrMismatch:  r.addrMismatch.Load(),
		DecodeErrors:  r.decodeErrors.Load(),
		FramingErrors: r.framingErrors.Load(),
		DroppedPaused: r.droppedPaused.Load(),
	}
}

func (r *Receiver) pump() {
	d := link.NewDeframer()
	buf := make([]byte, 512)
	for {
		n, err := r.conn.Read(buf)
		for _, b := range buf[:n] {
			frame, ferr := d.Feed(b)
			if ferr != nil {
				r.framingErrors.Add(1)
				continue
			}
			if frame != nil {
				r.handleFrame(frame)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) &&
				!errors.Is(err, link.ErrConnClosed) {
				log.Printf("gateway: link read: %v", err)
			}
			return
		}
	}
}

// handleFrame is the receive handler: decode and stage, nothing more. It
// must stay cheap; forwarding happens on the main loop.
func (r *Receiver) handleFrame(f *link.RxFrame) {
	r.totalFrames.Add(1)
	if f.Addr != r.addr {
		r.addrMismatch.Add(1)
		return
	}
	if r.paused.Load() {
		r.droppedPaused.Add(1)
		return
	}

	v, err := tiltwire.Decode(f.Payload)
	if err == nil {
		r.mailbox.Put(ReadingFromView(v))
		r.validReadings.Add(1)
		return
	}
	if legacy, lerr := tiltwire.DecodeLegacy(f.Payload); lerr == nil {
		r.mailbox.Put(ReadingFromLegacy(legacy))
		r.legacyFrames.Add(1)
		return
	}
	r.decodeErrors.Add(1)
	log.Printf("gateway: dropped undecodable frame (%d bytes): %v", len(f.Payload), err)
}
