// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package link

import "fmt"

// Frame builds a complete wire frame for the given receiver address and
// payload, including framing bytes, byte stuffing and CRC.
func Frame(addr Addr, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("link: payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	// Data section: length + address + payload. This is what gets CRC'd
	// and byte-stuffed.
	data := make([]byte, 0, 1+AddrSize+len(payload)+2)
	data = append(data, uint8(len(payload)))
	data = append(data, addr[:]...)
	data = append(data, payload...)

	crc := CalculateCRC(data)
	data = append(data, byte(crc>>8), byte(crc&0xFF))

	stuffed := stuffBytes(data)

	frame := make([]byte, 0, len(stuffed)+2)
	frame = append(frame, StartByte)
	frame = append(frame, stuffed...)
	frame = append(frame, EndByte)
	return frame, nil
}

// stuffBytes applies byte stuffing to escape special bytes.
// Special bytes (START, END, ESC) are replaced with ESC + (byte XOR EscXor).
func stuffBytes(data []byte) []byte {
	result := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if b == StartByte || b == EndByte || b == EscByte {
			result = append(result, EscByte, b^EscXor)
		} else {
			result = append(result, b)
		}
	}
	return result
}

// UnstuffBytes removes byte stuffing from escaped data. Inverse of
// stuffBytes.
func UnstuffBytes(data []byte) ([]byte, error) {
	result := make([]byte, 0, len(data))
	escapeNext := false
	for _, b := range data {
		if escapeNext {
			result = append(result, b^EscXor)
			escapeNext = false
		} else if b == EscByte {
			escapeNext = true
		} else {
			result = append(result, b)
		}
	}
	if escapeNext {
		return nil, fmt.Errorf("link: incomplete escape sequence at end of data")
	}
	return result, nil
}
