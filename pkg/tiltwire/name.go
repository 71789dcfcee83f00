// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import "fmt"

// DeviceName derives a stable device label from the chip identifier,
// e.g. "tilt-0a1b2c3d". Truncated to the wire's name limit.
func DeviceName(prefix string, chipID uint32) string {
	name := fmt.Sprintf("%s-%08x", prefix, chipID)
	if len(name) > MaxNameLen {
		name = name[:MaxNameLen]
	}
	return name
}
