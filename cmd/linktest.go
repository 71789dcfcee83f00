// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/tiltwire"
)

var linkTestTimeout int

var linkTestCmd = &cobra.Command{
	Use:   "link_test",
	Short: "Test the link by waiting for a valid readings frame",
	Long: `Wait for a valid framed readings packet on the connection
until timeout. Invalid bytes are ignored; the wait ends on the first
frame that passes CRC and decodes.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without a valid frame
  2 - Connection error

Useful for checking cabling and the WebSocket bridge before leaving a
gateway unattended.`,
	RunE: runLinkTest,
}

func init() {
	rootCmd.AddCommand(linkTestCmd)
	linkTestCmd.Flags().IntVar(&linkTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runLinkTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := openLink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Tilted - Link Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", linkTestTimeout)
	fmt.Printf("Waiting for a valid readings frame...\n\n")

	frameChan := make(chan *link.RxFrame, 1)
	errChan := make(chan error, 1)

	go func() {
		deframer := link.NewDeframer()
		buf := make([]byte, 512)
		invalidBytes := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			for i := 0; i < n; i++ {
				frame, ferr := deframer.Feed(buf[i])
				if ferr != nil {
					invalidBytes++
					continue
				}
				if frame == nil {
					continue
				}
				if _, derr := tiltwire.Decode(frame.Payload); derr != nil {
					if _, lerr := tiltwire.DecodeLegacy(frame.Payload); lerr != nil {
						invalidBytes += len(frame.Payload)
						continue
					}
				}
				if invalidBytes > 0 {
					fmt.Printf("(skipped %d invalid bytes before sync)\n", invalidBytes)
				}
				frameChan <- frame
				return
			}
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Address: %02x\n", frame.Addr)
		fmt.Printf("  Payload: %d bytes\n", len(frame.Payload))
		fmt.Printf("  CRC: 0x%04X\n", frame.CRC)
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(linkTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", linkTestTimeout)
		os.Exit(1)
	}

	return nil
}
