// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Display decoded readings in human-readable format",
	Long: `Continuously deframe and decode readings packets as they
arrive on the link, one line per packet with the device name and every
value item.

Supports both serial and WebSocket connections.`,
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openLink()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Tilted - Readings Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	deframer := link.NewDeframer()
	buf := make([]byte, 512)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, link.ErrConnClosed) {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		for i := 0; i < n; i++ {
			frame, ferr := deframer.Feed(buf[i])
			if ferr != nil {
				fmt.Printf("[ERROR] %v\n", ferr)
				continue
			}
			if frame == nil {
				continue
			}
			v, derr := tiltwire.Decode(frame.Payload)
			if derr != nil {
				if legacy, lerr := tiltwire.DecodeLegacy(frame.Payload); lerr == nil {
					fmt.Printf("[LEGACY] tilt=%.1f temp=%.1f battery=%dmV interval=%ds\n",
						legacy.Tilt, legacy.Temp, legacy.BatteryMv, legacy.IntervalS)
					continue
				}
				fmt.Printf("[ERROR] undecodable payload (%d bytes): %v\n", len(frame.Payload), derr)
				continue
			}
			fmt.Print(tiltwire.FormatView(v))
		}
	}
}
