// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

var (
	decodeTilt     float64
	decodeTemp     float64
	decodeAuxTemp  float64
	decodeBattery  int32
	decodeInterval int32
	decodeChipID   uint32
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Build a sample packet and print its wire dump",
	Long: `Encode a readings packet from the given values, print the raw
bytes and the framed bytes as they would appear on the link, then decode
the packet back and print it.

Useful on the bench for eyeballing the wire format and for feeding known
packets into other tools.`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().Float64Var(&decodeTilt, "tilt", 123.4, "Tilt angle in degrees")
	decodeCmd.Flags().Float64Var(&decodeTemp, "temp", 21.0, "Temperature in degrees C")
	decodeCmd.Flags().Float64Var(&decodeAuxTemp, "aux-temp", math.NaN(), "Auxiliary temperature in degrees C (omitted by default)")
	decodeCmd.Flags().Int32Var(&decodeBattery, "battery", 3310, "Battery voltage in millivolts")
	decodeCmd.Flags().Int32Var(&decodeInterval, "interval", 800, "Reporting interval in seconds")
	decodeCmd.Flags().Uint32Var(&decodeChipID, "chip-id", 0x0A1B2C3D, "Chip identifier")
}

func hexDump(label string, data []byte) {
	fmt.Printf("%s (%d bytes):\n", label, len(data))
	for i, b := range data {
		if i%16 == 0 {
			fmt.Printf("  %04x:", i)
		}
		fmt.Printf(" %02x", b)
		if i%16 == 15 {
			fmt.Println()
		}
	}
	if len(data)%16 != 0 {
		fmt.Println()
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	items := []tiltwire.ValueItem{
		tiltwire.TiltDeg(decodeTilt),
		tiltwire.TempC(decodeTemp),
	}
	if !math.IsNaN(decodeAuxTemp) {
		items = append(items, tiltwire.AuxTempC(decodeAuxTemp))
	}
	items = append(items,
		tiltwire.BatteryMv(decodeBattery),
		tiltwire.IntervalS(decodeInterval),
	)

	name := tiltwire.DeviceName("tilt", decodeChipID)
	size, ok := tiltwire.PacketSize(len(name), len(items))
	if !ok {
		return fmt.Errorf("invalid packet dimensions: name %d bytes, %d items", len(name), len(items))
	}

	buf := make([]byte, size)
	n, err := tiltwire.Encode(buf, decodeChipID, uint16(decodeInterval), name, items)
	if err != nil {
		return err
	}

	hexDump("Packet", buf[:n])

	framed, err := link.Frame(link.GatewayAddr, buf[:n])
	if err != nil {
		return err
	}
	hexDump("Framed", framed)

	v, err := tiltwire.Decode(buf[:n])
	if err != nil {
		return fmt.Errorf("round trip failed: %v", err)
	}
	fmt.Println()
	fmt.Print(tiltwire.FormatView(v))
	return nil
}
