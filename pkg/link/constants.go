// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package link carries tiltwire packets over the short-range hop between
// the sensor and gateway nodes.
//
// Frames are byte-stuffed with START/END/ESC framing and protected by
// CRC-16-CCITT. Each frame carries the 6-byte peer address of the
// intended receiver; pairing is static, there is no discovery handshake.
// The link is fire-and-forget: one send per wake cycle, no acknowledgement.
package link

// Framing bytes.
const (
	StartByte = 0x7E
	EndByte   = 0x7F
	EscByte   = 0x7D
	EscXor    = 0x20
)

// Frame size limits. The payload bound matches the radio hardware's
// maximum frame body.
const (
	AddrSize       = 6
	MaxPayloadSize = 250
	MaxFrameSize   = 1 + AddrSize + MaxPayloadSize + 2 // length + addr + payload + crc
)

// CRC-16-CCITT configuration.
const (
	crcPolynomial = 0x1021
	crcInitial    = 0xFFFF
)

// Addr is a 6-byte link-layer address.
type Addr [AddrSize]byte

// GatewayAddr is the fixed receiver identity shared by convention with
// all sensor nodes.
var GatewayAddr = Addr{0x54, 0x4C, 0x54, 0x44, 0x00, 0x01}

// Deframer states (internal).
const (
	stateIdle = iota
	stateLength
	stateAddr
	statePayload
	stateCRC1
	stateCRC2
)
