// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package drivers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// BatterySource reports supply voltage in millivolts.
type BatterySource interface {
	VoltageMv() (int, error)
}

// SysfsBattery reads voltage from a power-supply or iio sysfs attribute.
// Readings are averaged over a few samples because the ADC node is noisy
// under radio load.
type SysfsBattery struct {
	// Path to the voltage attribute, for example
	// /sys/class/power_supply/battery/voltage_now.
	Path string
	// Divisor converts the attribute's unit to millivolts; voltage_now
	// is microvolts, so 1000. Zero means 1000.
	Divisor int

	readFile func(string) ([]byte, error)
}

const batterySamples = 3

// VoltageMv reads the attribute batterySamples times and returns the
// mean in millivolts.
func (b *SysfsBattery) VoltageMv() (int, error) {
	div := b.Divisor
	if div == 0 {
		div = 1000
	}
	read := b.readFile
	if read == nil {
		read = os.ReadFile
	}
	sum := 0
	for i := 0; i < batterySamples; i++ {
		raw, err := read(b.Path)
		if err != nil {
			return 0, fmt.Errorf("drivers: battery read: %v", err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		if err != nil {
			return 0, fmt.Errorf("drivers: bad battery reading: %v", err)
		}
		sum += v
	}
	return sum / batterySamples / div, nil
}
