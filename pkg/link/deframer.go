// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import "fmt"

// RxFrame is one deframed, CRC-checked frame.
type RxFrame struct {
	Addr    Addr
	Payload []byte
	CRC     uint16
}

// Deframer reassembles frames from a byte stream, one byte at a time.
type Deframer struct {
	state      int
	buffer     []byte
	escapeNext bool
	addrBytes  int
	length     uint8
	frame      *RxFrame
	crc        uint16
}

// NewDeframer creates a new frame decoder in the idle state.
func NewDeframer() *Deframer {
	return &Deframer{
		state:  stateIdle,
		buffer: make([]byte, 0, MaxFrameSize),
	}
}

// Reset returns the deframer to idle, discarding any partial frame.
func (d *Deframer) Reset() {
	d.state = stateIdle
	d.buffer = d.buffer[:0]
	d.escapeNext = false
	d.addrBytes = 0
	d.length = 0
	d.frame = nil
	d.crc = 0
}

// Feed processes a single byte through the deframer state machine.
// Returns a completed frame, or nil while the frame is incomplete.
// Returns an error if deframing fails; the deframer resynchronizes on the
// next START byte.
func (d *Deframer) Feed(b byte) (*RxFrame, error) {
	// Handle byte stuffing.
	if b == EscByte && !d.escapeNext {
		d.escapeNext = true
		return nil, nil
	}

	originalB := b
	if d.escapeNext {
		b ^= EscXor
		d.escapeNext = false
	}

	if originalB == StartByte && !d.escapeNext {
		d.Reset()
		d.state = stateLength
		return nil, nil
	}

	if originalB == EndByte && !d.escapeNext {
		if d.state == stateCRC2 {
			frame := d.frame
			calculated := CalculateCRC(d.buffer)
			if d.crc != calculated {
				err := fmt.Errorf("link: CRC mismatch: expected 0x%04X, got 0x%04X", calculated, d.crc)
				d.Reset()
				return nil, err
			}
			frame.CRC = d.crc
			d.Reset()
			return frame, nil
		}
		d.Reset()
		return nil, fmt.Errorf("link: unexpected END byte in state %d", d.state)
	}

	switch d.state {
	case stateIdle:
		// Waiting for START byte.
		return nil, nil

	case stateLength:
		if b > MaxPayloadSize {
			d.Reset()
			return nil, fmt.Errorf("link: invalid length: %d (max %d)", b, MaxPayloadSize)
		}
		d.length = b
		d.frame = &RxFrame{Payload: make([]byte, 0, b)}
		d.buffer = append(d.buffer, b)
		d.addrBytes = 0
		d.state = stateAddr
		return nil, nil

	case stateAddr:
		d.frame.Addr[d.addrBytes] = b
		d.buffer = append(d.buffer, b)
		d.addrBytes++
		if d.addrBytes >= AddrSize {
			if d.length == 0 {
				d.state = stateCRC1
			} else {
				d.state = statePayload
			}
		}
		return nil, nil

	case statePayload:
		d.frame.Payload = append(d.frame.Payload, b)
		d.buffer = append(d.buffer, b)
		if len(d.frame.Payload) >= int(d.length) {
			d.state = stateCRC1
		}
		return nil, nil

	case stateCRC1:
		d.crc = uint16(b) << 8
		d.state = stateCRC2
		return nil, nil

	case stateCRC2:
		d.crc |= uint16(b)
		// Wait for END byte.
		return nil, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("link: invalid state: %d", d.state)
	}
}
