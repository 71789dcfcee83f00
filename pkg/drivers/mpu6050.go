// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package drivers provides the Linux hardware backends behind the
// sampler interfaces: the MPU-6050 motion sensor and BMP280 probe on the
// i2c bus (periph.io), the DS18B20 on the w1 sysfs bus, and a sysfs
// battery voltage source.
package drivers

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// MPU-6050 register map (the subset this driver touches).
const (
	mpuAddr uint16 = 0x68

	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regIntPinCfg   = 0x37
	regIntEnable   = 0x38
	regIntStatus   = 0x3A
	regAccelXoutH  = 0x3B
	regTempOutH    = 0x41
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75

	mpuWhoAmI       = 0x68
	pwrSleepBit     = 1 << 6
	intDataReadyBit = 1 << 0

	// INT pin: latched pulse, active low, open drain.
	intPinCfg = 0xD0
	// DLPF 5 Hz; the hydrometer floats, fast motion is noise.
	dlpfBw5 = 0x06
)

// regConn is the register transport; satisfied by *i2c.Dev and by test
// fakes.
type regConn interface {
	Tx(w, r []byte) error
}

// MPU6050 drives the motion sensor over i2c. It satisfies
// sampler.Accelerometer.
type MPU6050 struct {
	busName string
	bus     i2c.BusCloser
	dev     regConn
}

// NewMPU6050 creates a driver bound to the named i2c bus ("" selects the
// first available bus).
func NewMPU6050(busName string) *MPU6050 {
	return &MPU6050{busName: busName}
}

// Init claims the bus and configures the sensor for slow, low-noise
// acquisition with the data-ready interrupt latched.
func (m *MPU6050) Init() error {
	if m.dev == nil {
		if _, err := host.Init(); err != nil {
			return fmt.Errorf("drivers: host init: %v", err)
		}
		bus, err := i2creg.Open(m.busName)
		if err != nil {
			return fmt.Errorf("drivers: open i2c bus %q: %v", m.busName, err)
		}
		m.bus = bus
		m.dev = &i2c.Dev{Bus: bus, Addr: mpuAddr}
	}

	id, err := m.readReg(regWhoAmI)
	if err != nil {
		return fmt.Errorf("drivers: mpu6050 not responding: %v", err)
	}
	if id != mpuWhoAmI {
		return fmt.Errorf("drivers: unexpected WHO_AM_I 0x%02X", id)
	}

	init := []struct{ reg, val byte }{
		{regPwrMgmt1, 0x00},    // wake, temp sensor enabled
		{regSmplrtDiv, 17},     // slow sample rate
		{regConfig, dlpfBw5},   // 5 Hz low-pass filter
		{regGyroConfig, 0x00},  // ±250 °/s
		{regAccelConfig, 0x00}, // ±2 g
		{regIntPinCfg, intPinCfg},
		{regIntEnable, intDataReadyBit},
	}
	for _, w := range init {
		if err := m.writeReg(w.reg, w.val); err != nil {
			return fmt.Errorf("drivers: mpu6050 reg 0x%02X: %v", w.reg, err)
		}
	}
	return nil
}

// DataReady reads the interrupt status bit; reading clears the latch.
func (m *MPU6050) DataReady() (bool, error) {
	status, err := m.readReg(regIntStatus)
	if err != nil {
		return false, err
	}
	return status&intDataReadyBit != 0, nil
}

// Acceleration reads the three axis registers in one bus transaction and
// returns them as raw counts; tilt is scale invariant.
func (m *MPU6050) Acceleration() (float64, float64, float64, error) {
	var raw [6]byte
	if err := m.dev.Tx([]byte{regAccelXoutH}, raw[:]); err != nil {
		return 0, 0, 0, err
	}
	ax := int16(binary.BigEndian.Uint16(raw[0:2]))
	ay := int16(binary.BigEndian.Uint16(raw[2:4]))
	az := int16(binary.BigEndian.Uint16(raw[4:6]))
	return float64(ax), float64(ay), float64(az), nil
}

// Temperature reads the die thermometer. The offset is from the MPU
// datasheet; result is degrees C.
func (m *MPU6050) Temperature() (float64, error) {
	var raw [2]byte
	if err := m.dev.Tx([]byte{regTempOutH}, raw[:]); err != nil {
		return 0, err
	}
	t := int16(binary.BigEndian.Uint16(raw[:]))
	return float64(t)/340.0 + 36.53, nil
}

// Sleep sets the sensor's sleep bit and releases the bus. Idempotent.
func (m *MPU6050) Sleep() {
	if m.dev != nil {
		m.writeReg(regPwrMgmt1, pwrSleepBit)
	}
	if m.bus != nil {
		m.bus.Close()
		m.bus = nil
		m.dev = nil
	}
}

func (m *MPU6050) readReg(reg byte) (byte, error) {
	var r [1]byte
	if err := m.dev.Tx([]byte{reg}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (m *MPU6050) writeReg(reg, val byte) error {
	return m.dev.Tx([]byte{reg, val}, nil)
}
