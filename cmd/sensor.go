// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/drivers"
	"github.com/fermlab/tilted/pkg/sampler"
	"github.com/fermlab/tilted/pkg/sensornode"
	"github.com/fermlab/tilted/pkg/settings"
)

var (
	sensorI2CBus      string
	sensorAux         string
	sensorW1Device    string
	sensorBatteryPath string
	sensorStatePath   string
	sensorChipID      uint32
	sensorWindowSize  int
)

var sensorCmd = &cobra.Command{
	Use:   "sensor",
	Short: "Run the sensor node control loop",
	Long: `Run the battery-side half of the pipeline: sample tilt and
temperature, build a readings packet and transmit it once per wake
cycle, then sleep.

Hold the device inverted during the first 30 seconds after a cold boot
to start a calibration run (denser sampling for the next 60 cycles).

The auxiliary temperature probe is selected with --aux:
  none    - no auxiliary probe (default)
  w1      - DS18B20 on the 1-wire bus (see --w1-device)
  bmp280  - BMP280 on the i2c bus`,
	RunE: runSensor,
}

func init() {
	rootCmd.AddCommand(sensorCmd)
	sensorCmd.Flags().StringVar(&sensorI2CBus, "i2c-bus", "", "i2c bus name (empty selects the first bus)")
	sensorCmd.Flags().StringVar(&sensorAux, "aux", "none", "Auxiliary temperature probe: none, w1 or bmp280")
	sensorCmd.Flags().StringVar(&sensorW1Device, "w1-device", "", "1-wire device id (empty selects the first DS18B20)")
	sensorCmd.Flags().StringVar(&sensorBatteryPath, "battery", "", "sysfs voltage attribute for battery reporting")
	sensorCmd.Flags().StringVar(&sensorStatePath, "state", sensornode.DefaultStorePath, "Calibration state file (tmpfs)")
	sensorCmd.Flags().Uint32Var(&sensorChipID, "chip-id", 0, "Chip identifier (0 derives one from the machine id)")
	sensorCmd.Flags().IntVar(&sensorWindowSize, "window", 5, "Tilt median window size")
}

// deriveChipID hashes the host's machine id into the 32-bit chip
// identifier the wire protocol carries.
func deriveChipID() uint32 {
	raw, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		host, _ := os.Hostname()
		raw = []byte(host)
	}
	h := fnv.New32a()
	h.Write([]byte(strings.TrimSpace(string(raw))))
	return h.Sum32()
}

func runSensor(cmd *cobra.Command, args []string) error {
	st, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	radio, err := openRadio()
	if err != nil {
		return err
	}

	chipID := sensorChipID
	if chipID == 0 {
		chipID = deriveChipID()
	}

	accel := drivers.NewMPU6050(sensorI2CBus)
	tilt := sampler.NewTiltSampler(accel, sensorWindowSize)

	var probe *sampler.ProbeSampler
	switch sensorAux {
	case "none":
	case "w1":
		probe = sampler.NewProbeSampler(&drivers.W1Probe{DeviceID: sensorW1Device}, time.Now)
	case "bmp280":
		probe = sampler.NewProbeSampler(drivers.NewBMP280(sensorI2CBus), time.Now)
	default:
		return fmt.Errorf("unknown auxiliary probe %q", sensorAux)
	}

	var battery sensornode.BatterySource
	if sensorBatteryPath != "" {
		battery = &drivers.SysfsBattery{Path: sensorBatteryPath}
	}

	cfg := sensornode.Config{ChipID: chipID}
	if st.DeviceName != "" {
		cfg.NamePrefix = st.DeviceName
	}

	node := sensornode.New(cfg, tilt, probe, battery, radio,
		&sensornode.Store{Path: sensorStatePath}, nil)

	fmt.Printf("Tilted - Sensor Node\n")
	fmt.Printf("Chip ID: %08x\n", chipID)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	node.Run()
	return nil
}
