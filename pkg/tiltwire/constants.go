// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package tiltwire implements the Tilted readings protocol shared by the
// sensor and gateway nodes.
//
// A readings packet is a fixed little-endian header followed by a short
// UTF-8 name and a list of typed measurement items. The layout is packed
// with no padding; the reconstructed size must match the received buffer
// exactly. Decoding is zero-copy: a View borrows the caller's buffer and
// must not outlive it.
package tiltwire

// Wire sentinel and supported protocol version.
const (
	Magic   uint16 = 0x544C // "LT" on the wire (little-endian)
	Version uint8  = 1
)

// Message types. Legacy is the pre-TLV fixed struct, retained only so old
// sensors keep working during a staggered upgrade; new code targets
// MsgReadings.
const (
	MsgLegacy   uint8 = 0
	MsgReadings uint8 = 1
)

// Packet layout sizes, in bytes.
const (
	HeaderSize = 12
	ItemSize   = 8
	MaxNameLen = 24

	// LegacySize is the size of the old raw readings struct:
	// f32 tilt, f32 temp, i32 millivolts, i32 interval.
	LegacySize = 16
)

// ValueType identifies one measurement item. New types are appended,
// existing values are never renumbered.
type ValueType uint8

const (
	TypeTilt ValueType = iota + 1
	TypeTemp
	TypeAuxTemp
	TypeBatteryMv
	TypeIntervalS
	TypeRssiDbm
)

// String returns the wire name of a value type.
func (t ValueType) String() string {
	switch t {
	case TypeTilt:
		return "TILT"
	case TypeTemp:
		return "TEMP"
	case TypeAuxTemp:
		return "AUX_TEMP"
	case TypeBatteryMv:
		return "BATTERY_MV"
	case TypeIntervalS:
		return "INTERVAL_S"
	case TypeRssiDbm:
		return "RSSI_DBM"
	default:
		return "UNKNOWN"
	}
}
