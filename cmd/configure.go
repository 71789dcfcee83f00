// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Fermlab

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fermlab/tilted/pkg/gateway"
	"github.com/fermlab/tilted/pkg/settings"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Edit the persistent device settings",
	Long: `Interactively edit the settings store both node roles read at
boot: device name, Wi-Fi credentials, the gravity calibration expression
and the logging endpoint URL.

Pressing enter keeps the current value. The Wi-Fi password is read
without echo, or from the TILTED_WIFI_PASSWORD environment variable if
set. Restart the nodes after writing for the new settings to apply.`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// promptString asks for one settings value, keeping the current value on
// an empty answer.
func promptString(reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		fmt.Printf("%s [%s]: ", label, current)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %v", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

// promptPassword reads the Wi-Fi password from the environment or from
// the terminal without echo.
func promptPassword(current string) (string, error) {
	if pw := os.Getenv("TILTED_WIFI_PASSWORD"); pw != "" {
		return pw, nil
	}

	if current != "" {
		fmt.Fprint(os.Stderr, "Wi-Fi password (enter keeps current): ")
	} else {
		fmt.Fprint(os.Stderr, "Wi-Fi password: ")
	}

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		password = strings.TrimSpace(password)
		if password == "" {
			return current, nil
		}
		return password, nil
	}

	fmt.Fprintln(os.Stderr)
	if len(passwordBytes) == 0 {
		return current, nil
	}
	return string(passwordBytes), nil
}

func runConfigure(cmd *cobra.Command, args []string) error {
	current, err := settings.Load(settingsPath)
	if err != nil {
		return err
	}

	fmt.Printf("Tilted - Configuration\n")
	fmt.Printf("Settings store: %s\n\n", settingsPath)

	reader := bufio.NewReader(os.Stdin)
	next := current

	if next.DeviceName, err = promptString(reader, "Device name", current.DeviceName); err != nil {
		return err
	}
	if next.WifiSSID, err = promptString(reader, "Wi-Fi SSID", current.WifiSSID); err != nil {
		return err
	}
	if next.WifiPassword, err = promptPassword(current.WifiPassword); err != nil {
		return err
	}
	if next.CalibrationExpression, err = promptString(reader, "Calibration expression", current.CalibrationExpression); err != nil {
		return err
	}
	if next.EndpointURL, err = promptString(reader, "Endpoint URL", current.EndpointURL); err != nil {
		return err
	}

	// Catch a bad expression at configure time, not at the first
	// forwarded reading.
	if next.CalibrationExpression != "" {
		if _, err := gateway.EvalGravity(next.CalibrationExpression, 25.0, 20.0); err != nil {
			fmt.Printf("\nWarning: %v\n", err)
			fmt.Printf("The expression was saved anyway; the gravity field will be omitted until it evaluates.\n")
		}
	}

	if err := settings.Save(settingsPath, next); err != nil {
		return err
	}

	fmt.Printf("\nSettings written to %s\n", settingsPath)
	fmt.Printf("Restart the nodes to apply.\n")
	return nil
}
