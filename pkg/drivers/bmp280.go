// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

package drivers

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/devices/bmxx80"
	"periph.io/x/periph/host"
)

const bmp280Addr uint16 = 0x76

// envSensor is the slice of bmxx80.Dev this driver needs; tests inject a
// fake.
type envSensor interface {
	Sense(e *physic.Env) error
	Halt() error
}

// BMP280 reads ambient temperature from the barometer's thermometer. It
// backs the auxiliary temperature item and can be omitted from a build
// entirely; a nil *BMP280 is a valid absent sensor.
type BMP280 struct {
	busName string
	bus     i2c.BusCloser
	dev     envSensor
}

// NewBMP280 creates a driver bound to the named i2c bus.
func NewBMP280(busName string) *BMP280 {
	return &BMP280{busName: busName}
}

// Init claims the bus and probes the device.
func (b *BMP280) Init() error {
	if b.dev != nil {
		return nil
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("drivers: host init: %v", err)
	}
	bus, err := i2creg.Open(b.busName)
	if err != nil {
		return fmt.Errorf("drivers: open i2c bus %q: %v", b.busName, err)
	}
	dev, err := bmxx80.NewI2C(bus, bmp280Addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return fmt.Errorf("drivers: bmp280: %v", err)
	}
	b.bus = bus
	b.dev = dev
	return nil
}

// Convert is a no-op; Sense performs the measurement during the read.
func (b *BMP280) Convert() error { return nil }

// ConversionTime is zero: the device measures on demand.
func (b *BMP280) ConversionTime() time.Duration { return 0 }

// ReadTemperature lets a BMP280 stand in as a thermal probe.
func (b *BMP280) ReadTemperature() (float64, error) { return b.TemperatureC() }

// TemperatureC takes a single measurement in degrees C.
func (b *BMP280) TemperatureC() (float64, error) {
	if b == nil || b.dev == nil {
		return 0, fmt.Errorf("drivers: bmp280 not initialized")
	}
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return 0, err
	}
	return env.Temperature.Celsius(), nil
}

// Sleep halts the device and releases the bus. Idempotent and safe on a
// nil receiver.
func (b *BMP280) Sleep() {
	if b == nil {
		return
	}
	if b.dev != nil {
		b.dev.Halt()
		b.dev = nil
	}
	if b.bus != nil {
		b.bus.Close()
		b.bus = nil
	}
}
