// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	ErrNameTooLong = errors.New("tiltwire: name exceeds 24 bytes")
	ErrPacketSize  = errors.New("tiltwire: invalid packet size")
	ErrShortBuffer = errors.New("tiltwire: buffer too small for packet")
)

// PacketSize returns the exact wire size of a readings packet, or false
// if the name is too long or the size would not fit the wire's 16-bit
// length field.
func PacketSize(nameLen, itemCount int) (int, bool) {
	if nameLen < 0 || nameLen > MaxNameLen {
		return 0, false
	}
	if itemCount < 0 || itemCount > 255 {
		return 0, false
	}
	size := HeaderSize + nameLen + itemCount*ItemSize
	if size > math.MaxUint16 {
		return 0, false
	}
	return size, true
}

// Encode writes a readings packet into buf and returns the number of
// bytes written. On any failure it returns 0 and an error without having
// written anything observable to the caller.
func Encode(buf []byte, chipID uint32, intervalSeconds uint16, name string, items []ValueItem) (int, error) {
	if len(name) > MaxNameLen {
		return 0, ErrNameTooLong
	}
	size, ok := PacketSize(len(name), len(items))
	if !ok {
		return 0, ErrPacketSize
	}
	if size > len(buf) {
		return 0, ErrShortBuffer
	}

	binary.LittleEndian.PutUint16(buf[0:2], Magic)
	buf[2] = Version
	buf[3] = MsgReadings
	binary.LittleEndian.PutUint32(buf[4:8], chipID)
	binary.LittleEndian.PutUint16(buf[8:10], intervalSeconds)
	buf[10] = uint8(len(name))
	buf[11] = uint8(len(items))

	off := HeaderSize
	off += copy(buf[off:], name)
	for _, it := range items {
		buf[off] = uint8(it.Type)
		buf[off+1] = uint8(it.Scale10)
		binary.LittleEndian.PutUint16(buf[off+2:off+4], 0) // reserved
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(it.RawValue))
		off += ItemSize
	}

	return size, nil
}
