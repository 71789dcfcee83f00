// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package drivers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const w1Root = "/sys/bus/w1/devices"

// Conversion latency by resolution, from the DS18B20 datasheet.
var conversionTimes = map[int]time.Duration{
	9:  94 * time.Millisecond,
	10: 188 * time.Millisecond,
	11: 375 * time.Millisecond,
	12: 750 * time.Millisecond,
}

// W1Probe reads a DS18B20 through the Linux w1 sysfs bus. It satisfies
// sampler.Thermometer. The kernel driver performs the conversion during
// the read, so Convert is a no-op and ConversionTime tells the sampler
// how long the eventual read will block.
type W1Probe struct {
	// DeviceID selects a specific sensor ("28-0316a4da1bff"); empty
	// picks the first 28-* device found.
	DeviceID string
	// Resolution in bits, 9 to 12. Zero means 12.
	Resolution int

	path string
}

// Init locates the sensor on the bus.
func (p *W1Probe) Init() error {
	if p.Resolution == 0 {
		p.Resolution = 12
	}
	if _, ok := conversionTimes[p.Resolution]; !ok {
		return fmt.Errorf("drivers: invalid w1 resolution %d", p.Resolution)
	}
	if p.DeviceID != "" {
		p.path = filepath.Join(w1Root, p.DeviceID, "w1_slave")
		if _, err := os.Stat(p.path); err != nil {
			return fmt.Errorf("drivers: w1 device %s: %v", p.DeviceID, err)
		}
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(w1Root, "28-*", "w1_slave"))
	if err != nil || len(matches) == 0 {
		return fmt.Errorf("drivers: no DS18B20 on w1 bus")
	}
	p.path = matches[0]
	return nil
}

// Convert is a no-op; the sysfs read triggers the conversion.
func (p *W1Probe) Convert() error {
	if p.path == "" {
		return fmt.Errorf("drivers: w1 probe not initialized")
	}
	return nil
}

// ConversionTime reports how long ReadTemperature will take at the
// configured resolution.
func (p *W1Probe) ConversionTime() time.Duration {
	d, ok := conversionTimes[p.Resolution]
	if !ok {
		return conversionTimes[12]
	}
	return d
}

// ReadTemperature reads and parses the sensor file. Degrees C.
func (p *W1Probe) ReadTemperature() (float64, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return parseW1Slave(string(raw))
}

// Sleep releases the device path. The sensor itself is parasite powered
// and needs no shutdown.
func (p *W1Probe) Sleep() {
	p.path = ""
}

// parseW1Slave extracts the temperature from the two-line w1_slave
// format:
//
//	4b 01 4b 46 7f ff 05 10 d8 : crc=d8 YES
//	4b 01 4b 46 7f ff 05 10 d8 t=20687
func parseW1Slave(s string) (float64, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) < 2 {
		return 0, fmt.Errorf("drivers: short w1_slave read")
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, fmt.Errorf("drivers: w1 crc check failed")
	}
	i := strings.LastIndex(lines[1], "t=")
	if i < 0 {
		return 0, fmt.Errorf("drivers: no temperature in w1_slave read")
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][i+2:]))
	if err != nil {
		return 0, fmt.Errorf("drivers: bad temperature in w1_slave read: %v", err)
	}
	return float64(milli) / 1000.0, nil
}
