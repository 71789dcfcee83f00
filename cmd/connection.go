// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"fmt"

	"github.com/fermlab/tilted/pkg/link"
)

// openLink opens either a serial or WebSocket link based on the
// persistent flags and returns it with a human-readable description.
func openLink() (link.Conn, string, error) {
	if wsURL != "" {
		conn, err := link.OpenWebSocket(wsURL, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		conn, err := link.OpenSerial(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// openRadio wraps the link flags as a sensor-side radio that opens the
// connection fresh on every bring-up, the way the real radio powers up
// from nothing each wake cycle.
func openRadio() (*link.Radio, error) {
	if wsURL == "" && portName == "" {
		return nil, fmt.Errorf("either --port or --url must be specified")
	}
	open := func() (link.Conn, error) {
		if wsURL != "" {
			return link.OpenWebSocket(wsURL, wsNoSSLVerify)
		}
		return link.OpenSerial(portName, baudRate)
	}
	return link.NewRadio(open, link.GatewayAddr), nil
}
