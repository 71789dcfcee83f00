// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package settings is the persistent device configuration: the handful
// of values an operator sets once and the nodes read at boot. Unlike the
// calibration block, this store survives power loss.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// DefaultPath is where both node roles look for their configuration.
const DefaultPath = "/etc/tilted/settings.cbor"

// Settings holds the operator-set configuration values.
type Settings struct {
	DeviceName            string `cbor:"deviceName"`
	WifiSSID              string `cbor:"wifiSSID"`
	WifiPassword          string `cbor:"wifiPassword"`
	CalibrationExpression string `cbor:"calibrationExpression"`
	EndpointURL           string `cbor:"endpointURL"`
}

// Load reads the settings file. A missing file returns zero settings and
// no error; every value has a usable zero default.
func Load(path string) (Settings, error) {
	var s Settings
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("settings: %v", err)
	}
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings: decode %s: %v", path, err)
	}
	return s, nil
}

// Save writes the settings atomically.
func Save(path string, s Settings) error {
	raw, err := cbor.Marshal(s)
	if err != nil {
		return fmt.Errorf("settings: encode: %v", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: %v", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("settings: %v", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: %v", err)
	}
	// The settings file can hold a network password.
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: %v", err)
	}
	return nil
}
