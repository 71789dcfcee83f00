// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Fermlab
//
// Tilted - fermentation telemetry for a floating tilt hydrometer.

package main

import (
	"os"

	"github.com/fermlab/tilted/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
