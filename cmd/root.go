// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/settings"
)

var (
	// Serial link flags
	portName string
	baudRate int

	// WebSocket link flags
	wsURL         string
	wsNoSSLVerify bool

	// Settings store location
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   "tilted",
	Short: "Tilt hydrometer telemetry pipeline",
	Long: `Tilted - fermentation telemetry for a floating tilt hydrometer.

A sensor node measures tilt angle (a proxy for specific gravity) and
temperature and relays readings over a short-range link to a gateway
node, which forwards them to a logging endpoint.

Link modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path

Run "tilted sensor" on the measuring node and "tilted gateway" on the
relay; "tilted watch" and "tilted log" observe traffic on the link.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", settings.DefaultPath, "Settings store location")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
