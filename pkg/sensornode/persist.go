// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab

// Package sensornode implements the sensor-side control loop: one wake
// cycle of sampling, packet assembly, transmission and deep sleep, plus
// the calibration bookkeeping that survives deep sleep.
package sensornode

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// blockTag marks a valid calibration block. A file without it (or with a
// stale version) reads as a cold boot.
const blockTag uint32 = 0x544C4331 // "TLC1"

// CalibrationProgress is the small state block that survives deep sleep
// but not power loss. An IterationCount of zero means "not calibrating".
type CalibrationProgress struct {
	Tag            uint32 `cbor:"tag"`
	IterationCount uint32 `cbor:"iterations"`
}

// Store reads and writes the calibration block. The path should live on
// tmpfs so the block disappears on power loss, which is exactly the
// cold-boot signal the control loop wants.
type Store struct {
	Path string
}

// DefaultStorePath places the block under /run, which is tmpfs on every
// target host.
const DefaultStorePath = "/run/tilted/calibration.cbor"

// Load reads the persisted block. warm reports whether a valid block was
// found; a missing or corrupt file is a cold boot, not an error.
func (s *Store) Load() (progress CalibrationProgress, warm bool) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return CalibrationProgress{}, false
	}
	if err := cbor.Unmarshal(raw, &progress); err != nil {
		return CalibrationProgress{}, false
	}
	if progress.Tag != blockTag {
		return CalibrationProgress{}, false
	}
	return progress, true
}

// Save writes the block atomically (temp file + rename) so a crash
// mid-write reads as a cold boot rather than garbage.
func (s *Store) Save(iterationCount uint32) error {
	raw, err := cbor.Marshal(CalibrationProgress{
		Tag:            blockTag,
		IterationCount: iterationCount,
	})
	if err != nil {
		return fmt.Errorf("sensornode: encode calibration block: %v", err)
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sensornode: %v", err)
	}
	tmp, err := os.CreateTemp(dir, ".calibration-*")
	if err != nil {
		return fmt.Errorf("sensornode: %v", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sensornode: write calibration block: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sensornode: %v", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sensornode: %v", err)
	}
	return nil
}
