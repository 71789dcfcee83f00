// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	ErrTruncated    = errors.New("tiltwire: buffer shorter than header")
	ErrBadMagic     = errors.New("tiltwire: wrong magic")
	ErrBadVersion   = errors.New("tiltwire: unsupported protocol version")
	ErrBadType      = errors.New("tiltwire: unexpected message type")
	ErrSizeMismatch = errors.New("tiltwire: buffer length does not match packet size")
)

// Header is the fixed 12-byte packet prefix.
type Header struct {
	Magic           uint16
	Version         uint8
	MsgType         uint8
	ChipID          uint32
	IntervalSeconds uint16
	NameLen         uint8
	ItemCount       uint8
}

// View is a decoded, non-owning reference into a readings packet. It
// borrows the buffer passed to Decode and must not be retained past that
// buffer's lifetime.
type View struct {
	Header Header

	buf []byte
}

// Decode validates buf as a readings packet and returns a borrowed view
// into it. The magic, version and message type must match exactly and the
// reconstructed packet size must equal len(buf) with no slack.
func Decode(buf []byte) (View, error) {
	if len(buf) < HeaderSize {
		return View{}, ErrTruncated
	}

	hdr := Header{
		Magic:           binary.LittleEndian.Uint16(buf[0:2]),
		Version:         buf[2],
		MsgType:         buf[3],
		ChipID:          binary.LittleEndian.Uint32(buf[4:8]),
		IntervalSeconds: binary.LittleEndian.Uint16(buf[8:10]),
		NameLen:         buf[10],
		ItemCount:       buf[11],
	}

	if hdr.Magic != Magic {
		return View{}, ErrBadMagic
	}
	if hdr.Version != Version {
		return View{}, ErrBadVersion
	}
	if hdr.MsgType != MsgReadings {
		return View{}, ErrBadType
	}
	size, ok := PacketSize(int(hdr.NameLen), int(hdr.ItemCount))
	if !ok || size != len(buf) {
		return View{}, ErrSizeMismatch
	}

	return View{Header: hdr, buf: buf}, nil
}

// Name returns the sender's label as a subslice of the decoded buffer.
func (v View) Name() []byte {
	return v.buf[HeaderSize : HeaderSize+int(v.Header.NameLen)]
}

// ItemCount returns the number of measurement items in the packet.
func (v View) ItemCount() int {
	return int(v.Header.ItemCount)
}

// Item decodes the i-th measurement item in place. Items are ordered as
// produced by the sender; duplicates of a type are legal and consumers
// take the last.
func (v View) Item(i int) ValueItem {
	off := HeaderSize + int(v.Header.NameLen) + i*ItemSize
	return ValueItem{
		Type:     ValueType(v.buf[off]),
		Scale10:  int8(v.buf[off+1]),
		RawValue: int32(binary.LittleEndian.Uint32(v.buf[off+4 : off+8])),
	}
}

// LegacyReading is the old fixed-layout readings struct, sent raw by
// first-generation sensors without the TLV header.
type LegacyReading struct {
	Tilt      float32
	Temp      float32
	BatteryMv int32
	IntervalS int32
}

// DecodeLegacy interprets buf as a legacy raw readings struct. The caller
// is expected to try Decode first; legacy frames carry no magic, so the
// only structural check available is the exact size.
func DecodeLegacy(buf []byte) (LegacyReading, error) {
	if len(buf) != LegacySize {
		return LegacyReading{}, ErrSizeMismatch
	}
	return LegacyReading{
		Tilt:      math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		Temp:      math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])),
		BatteryMv: int32(binary.LittleEndian.Uint32(buf[8:12])),
		IntervalS: int32(binary.LittleEndian.Uint32(buf[12:16])),
	}, nil
}
