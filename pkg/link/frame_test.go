// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import (
	"bytes"
	"testing"
)

func feedAll(t *testing.T, d *Deframer, data []byte) *RxFrame {
	t.Helper()
	var got *RxFrame
	for i, b := range data {
		frame, err := d.Feed(b)
		if err != nil {
			t.Fatalf("Feed error at byte %d: %v", i, err)
		}
		if frame != nil {
			if got != nil {
				t.Fatalf("second frame completed at byte %d", i)
			}
			got = frame
		}
	}
	return got
}

func TestCalculateCRCKnownValue(t *testing.T) {
	// Standard CRC-16-CCITT check value.
	if crc := CalculateCRC([]byte("123456789")); crc != 0x29B1 {
		t.Errorf("CRC mismatch: expected 0x29B1, got 0x%04X", crc)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	addr := Addr{1, 2, 3, 4, 5, 6}
	payload := []byte{0x00, 0x11, 0x22, 0x33}

	wire, err := Frame(addr, payload)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if wire[0] != StartByte || wire[len(wire)-1] != EndByte {
		t.Fatal("frame not delimited by START/END")
	}

	frame := feedAll(t, NewDeframer(), wire)
	if frame == nil {
		t.Fatal("no frame completed")
	}
	if frame.Addr != addr {
		t.Errorf("addr = %v, want %v", frame.Addr, addr)
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("payload = %x, want %x", frame.Payload, payload)
	}
}

func TestFrameEmptyPayload(t *testing.T) {
	wire, err := Frame(GatewayAddr, nil)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	frame := feedAll(t, NewDeframer(), wire)
	if frame == nil {
		t.Fatal("no frame completed")
	}
	if len(frame.Payload) != 0 {
		t.Errorf("payload = %x, want empty", frame.Payload)
	}
}

func TestFramePayloadTooLarge(t *testing.T) {
	if _, err := Frame(GatewayAddr, make([]byte, MaxPayloadSize+1)); err == nil {
		t.Error("expected error for oversized payload")
	}
}

func TestFrameStuffsSpecialBytes(t *testing.T) {
	// Payload containing every framing byte must survive the trip.
	payload := []byte{StartByte, EndByte, EscByte, StartByte}
	wire, err := Frame(Addr{EscByte, EndByte, StartByte, 0, 0, 0}, payload)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	// Inside the frame body no bare framing bytes may appear.
	for i, b := range wire[1 : len(wire)-1] {
		if b == StartByte || b == EndByte {
			t.Fatalf("bare framing byte 0x%02X at offset %d", b, i+1)
		}
	}

	frame := feedAll(t, NewDeframer(), wire)
	if frame == nil {
		t.Fatal("no frame completed")
	}
	if !bytes.Equal(frame.Payload, payload) {
		t.Errorf("payload = %x, want %x", frame.Payload, payload)
	}
}

func TestDeframerRejectsCorruptCRC(t *testing.T) {
	wire, err := Frame(GatewayAddr, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	// Flip one payload bit. Payload bytes 1..3 are not special, so the
	// stuffing layout is unchanged.
	wire[1+1+AddrSize] ^= 0x01

	d := NewDeframer()
	sawError := false
	for _, b := range wire {
		frame, err := d.Feed(b)
		if frame != nil {
			t.Fatal("corrupted frame accepted")
		}
		if err != nil {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected CRC error")
	}
}

func TestDeframerIgnoresNoiseBeforeStart(t *testing.T) {
	wire, err := Frame(GatewayAddr, []byte{0xAA})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	noisy := append([]byte{0x00, 0x42, 0x99, EndByte & 0x0F}, wire...)

	frame := feedAll(t, NewDeframer(), noisy)
	if frame == nil {
		t.Fatal("frame not recovered after noise")
	}
}

func TestDeframerResyncsAfterPartialFrame(t *testing.T) {
	wire, err := Frame(GatewayAddr, []byte{7, 8, 9})
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	// A truncated frame followed by a complete one: the second START
	// resets the state machine.
	stream := append(append([]byte{}, wire[:5]...), wire...)

	frame := feedAll(t, NewDeframer(), stream)
	if frame == nil {
		t.Fatal("no frame recovered after resync")
	}
	if !bytes.Equal(frame.Payload, []byte{7, 8, 9}) {
		t.Errorf("payload = %x", frame.Payload)
	}
}

func TestUnstuffBytesIncompleteEscape(t *testing.T) {
	if _, err := UnstuffBytes([]byte{0x01, EscByte}); err == nil {
		t.Error("expected error for trailing escape")
	}
}
