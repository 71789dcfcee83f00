// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func encodeValid(t *testing.T, chipID uint32, interval uint16, name string, items []ValueItem) []byte {
	t.Helper()
	buf := make([]byte, 1024)
	n, err := Encode(buf, chipID, interval, name, items)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf[:n]
}

// ============================================================
// PacketSize
// ============================================================

func TestPacketSize(t *testing.T) {
	tests := []struct {
		name      string
		nameLen   int
		itemCount int
		want      int
		ok        bool
	}{
		{"empty", 0, 0, HeaderSize, true},
		{"name only", 13, 0, HeaderSize + 13, true},
		{"items only", 0, 4, HeaderSize + 4*ItemSize, true},
		{"both", 24, 6, HeaderSize + 24 + 6*ItemSize, true},
		{"name too long", 25, 0, 0, false},
		{"negative name", -1, 0, 0, false},
		{"negative items", 0, -1, 0, false},
		{"too many items", 0, 256, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PacketSize(tt.nameLen, tt.itemCount)
			if ok != tt.ok || got != tt.want {
				t.Errorf("PacketSize(%d, %d) = (%d, %v), want (%d, %v)",
					tt.nameLen, tt.itemCount, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// ============================================================
// Round trip
// ============================================================

func TestRoundTrip(t *testing.T) {
	items := []ValueItem{
		TiltDeg(23.4),
		TempC(21.0),
		BatteryMv(3310),
		IntervalS(800),
		RssiDbm(-71),
	}
	pkt := encodeValid(t, 0x0a1b2c3d, 800, "tilt-0a1b2c3d", items)

	v, err := Decode(pkt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v.Header.ChipID != 0x0a1b2c3d {
		t.Errorf("chipID = %08x, want 0a1b2c3d", v.Header.ChipID)
	}
	if v.Header.IntervalSeconds != 800 {
		t.Errorf("interval = %d, want 800", v.Header.IntervalSeconds)
	}
	if string(v.Name()) != "tilt-0a1b2c3d" {
		t.Errorf("name = %q", v.Name())
	}
	if v.ItemCount() != len(items) {
		t.Fatalf("itemCount = %d, want %d", v.ItemCount(), len(items))
	}
	for i, want := range items {
		got := v.Item(i)
		if got != want {
			t.Errorf("item %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestRoundTripEmptyNameAndItems(t *testing.T) {
	pkt := encodeValid(t, 1, 30, "", nil)
	if len(pkt) != HeaderSize {
		t.Fatalf("packet length = %d, want %d", len(pkt), HeaderSize)
	}
	v, err := Decode(pkt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(v.Name()) != 0 || v.ItemCount() != 0 {
		t.Errorf("expected empty name and items, got %q / %d", v.Name(), v.ItemCount())
	}
}

// ============================================================
// Encode failures
// ============================================================

func TestEncodeNameTooLong(t *testing.T) {
	buf := make([]byte, 256)
	_, err := Encode(buf, 1, 1, strings.Repeat("x", MaxNameLen+1), nil)
	if err != ErrNameTooLong {
		t.Errorf("expected ErrNameTooLong, got %v", err)
	}
}

func TestEncodeShortBuffer(t *testing.T) {
	size, _ := PacketSize(4, 2)
	buf := make([]byte, size-1)
	n, err := Encode(buf, 1, 1, "abcd", []ValueItem{TiltDeg(1), TempC(2)})
	if err != ErrShortBuffer || n != 0 {
		t.Errorf("expected (0, ErrShortBuffer), got (%d, %v)", n, err)
	}
	// No partial writes observable.
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d written on failed encode", i)
		}
	}
}

// ============================================================
// Decode rejections
// ============================================================

func TestDecodeLengthMismatch(t *testing.T) {
	pkt := encodeValid(t, 7, 60, "hydro", []ValueItem{TiltDeg(45)})

	if _, err := Decode(pkt[:len(pkt)-1]); err != ErrSizeMismatch {
		t.Errorf("one byte short: expected ErrSizeMismatch, got %v", err)
	}
	long := append(bytes.Clone(pkt), 0)
	if _, err := Decode(long); err != ErrSizeMismatch {
		t.Errorf("one byte long: expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Decode(pkt[:HeaderSize-1]); err != ErrTruncated {
		t.Errorf("truncated header: expected ErrTruncated, got %v", err)
	}
}

func TestDecodeHeaderRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]byte)
		want   error
	}{
		{"wrong magic", func(b []byte) { binary.LittleEndian.PutUint16(b[0:2], Magic+1) }, ErrBadMagic},
		{"wrong version", func(b []byte) { b[2] = Version + 1 }, ErrBadVersion},
		{"wrong type", func(b []byte) { b[3] = MsgLegacy }, ErrBadType},
		{"name length over limit", func(b []byte) { b[10] = MaxNameLen + 1 }, ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := encodeValid(t, 7, 60, "hydro", []ValueItem{TiltDeg(45)})
			tt.mutate(pkt)
			if _, err := Decode(pkt); err != tt.want {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// ============================================================
// Fixed-point semantics
// ============================================================

func TestValueSemantics(t *testing.T) {
	tests := []struct {
		name string
		item ValueItem
		want float64
	}{
		{"scale -1", ValueItem{Type: TypeTilt, Scale10: -1, RawValue: 234}, 23.4},
		{"scale 0", ValueItem{Type: TypeBatteryMv, Scale10: 0, RawValue: 3310}, 3310},
		{"negative raw", ValueItem{Type: TypeRssiDbm, Scale10: 0, RawValue: -71}, -71},
		{"scale +1", ValueItem{Type: TypeIntervalS, Scale10: 1, RawValue: 6}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Value(); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueSurvivesWire(t *testing.T) {
	pkt := encodeValid(t, 1, 1, "", []ValueItem{{Type: TypeTilt, Scale10: -1, RawValue: 234}})
	v, err := Decode(pkt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := v.Item(0).Value(); got != 23.4 {
		t.Errorf("decoded value = %v, want 23.4", got)
	}
}

// ============================================================
// Zero-copy view
// ============================================================

func TestViewBorrowsBuffer(t *testing.T) {
	pkt := encodeValid(t, 1, 1, "probe", []ValueItem{TiltDeg(10)})
	v, err := Decode(pkt)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// Mutating the source buffer must be visible through the view.
	pkt[HeaderSize] = 'q'
	if string(v.Name()) != "qrobe" {
		t.Errorf("view does not alias buffer: name = %q", v.Name())
	}
}

// ============================================================
// Legacy struct
// ============================================================

func TestDecodeLegacy(t *testing.T) {
	buf := make([]byte, LegacySize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(25.5))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(19.25))
	binary.LittleEndian.PutUint32(buf[8:12], 3187)
	binary.LittleEndian.PutUint32(buf[12:16], 800)

	lr, err := DecodeLegacy(buf)
	if err != nil {
		t.Fatalf("DecodeLegacy failed: %v", err)
	}
	if lr.Tilt != 25.5 || lr.Temp != 19.25 || lr.BatteryMv != 3187 || lr.IntervalS != 800 {
		t.Errorf("unexpected legacy reading: %+v", lr)
	}

	if _, err := DecodeLegacy(buf[:LegacySize-1]); err == nil {
		t.Error("expected error for wrong legacy size")
	}
}

// ============================================================
// Device name
// ============================================================

func TestDeviceName(t *testing.T) {
	if got := DeviceName("tilt", 0x0a1b2c3d); got != "tilt-0a1b2c3d" {
		t.Errorf("DeviceName = %q", got)
	}
	long := DeviceName(strings.Repeat("a", 30), 1)
	if len(long) != MaxNameLen {
		t.Errorf("long name not truncated: %q (%d bytes)", long, len(long))
	}
}

func TestItemConstructors(t *testing.T) {
	if it := TiltDeg(123.44); it.RawValue != 1234 || it.Scale10 != -1 || it.Type != TypeTilt {
		t.Errorf("TiltDeg = %+v", it)
	}
	if it := TempC(-0.16); it.RawValue != -2 {
		t.Errorf("TempC rounding = %+v", it)
	}
	if it := BatteryMv(3310); it.RawValue != 3310 || it.Scale10 != 0 {
		t.Errorf("BatteryMv = %+v", it)
	}
}
