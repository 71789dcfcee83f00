// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fermlab/tilted/pkg/gateway"
	"github.com/fermlab/tilted/pkg/link"
	"github.com/fermlab/tilted/pkg/settings"
)

var (
	gatewayEndpoint   string
	gatewayExpression string
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the relay gateway",
	Long: `Run the mains-side half of the pipeline: receive readings
packets off the link, stage the newest one, and forward each as JSON to
the logging endpoint.

The endpoint URL and the optional gravity calibration expression come
from the settings store ("tilted configure") and can be overridden with
flags. The expression sees two variables, tilt and temp:

  tilted gateway --port /dev/ttyUSB0 \
    --endpoint https://log.example/ingest \
    --expression "1.0135 - 0.0021*tilt + 0.000043*tilt*tilt"`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
	gatewayCmd.Flags().StringVar(&gatewayEndpoint, "endpoint", "", "Logging endpoint URL (overrides settings)")
	gatewayCmd.Flags().StringVar(&gatewayExpression, "expression", "", "Gravity calibration expression (overrides settings)")
}

func runGateway(cmd *cobra.Command, args []string) error {
	st, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}
	endpoint := st.EndpointURL
	if gatewayEndpoint != "" {
		endpoint = gatewayEndpoint
	}
	expression := st.CalibrationExpression
	if gatewayExpression != "" {
		expression = gatewayExpression
	}
	if endpoint == "" {
		return fmt.Errorf("no logging endpoint configured; run \"tilted configure\" or pass --endpoint")
	}

	conn, connInfo, err := openLink()
	if err != nil {
		return err
	}

	fmt.Printf("Tilted - Gateway\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Endpoint: %s\n", endpoint)
	if expression != "" {
		fmt.Printf("Gravity expression: %s\n", expression)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	var mailbox gateway.Mailbox
	receiver := gateway.NewReceiver(conn, link.GatewayAddr, &mailbox)
	receiver.Start()

	forwarder := gateway.NewForwarder(gateway.ForwarderConfig{
		EndpointURL: endpoint,
		Expression:  expression,
	}, &mailbox, receiver)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	forwarder.Run(ctx)

	receiver.Stop()
	s := receiver.Snapshot()
	fmt.Printf("\nFrames: %d total, %d readings, %d legacy, %d undecodable\n",
		s.TotalFrames, s.ValidReadings, s.LegacyFrames, s.DecodeErrors)
	return nil
}
