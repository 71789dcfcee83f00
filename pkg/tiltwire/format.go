// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package tiltwire

import (
	"fmt"
	"strings"
)

// FormatView formats a decoded packet into a human-readable string for
// the operator tools.
func FormatView(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "READINGS name=%q chip=%08x interval=%ds items=%d\n",
		string(v.Name()), v.Header.ChipID, v.Header.IntervalSeconds, v.ItemCount())
	for i := 0; i < v.ItemCount(); i++ {
		it := v.Item(i)
		fmt.Fprintf(&b, "  %-10s raw=%d scale10=%d value=%g\n",
			it.Type.String(), it.RawValue, it.Scale10, it.Value())
	}
	return b.String()
}
