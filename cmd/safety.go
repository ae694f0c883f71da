// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var safetyCmd = &cobra.Command{
	Use:   "safety",
	Short: "Safety system commands",
}

func init() {
	rootCmd.AddCommand(safetyCmd)
	safetyCmd.AddCommand(
		operationCmd("restart", "Restart the safety system and wait for POWER_OFF", dashboard.OpRestartSafety),
		operationCmd("unlock", "Release a protective stop", dashboard.OpUnlockProtectiveStop),
		operationCmd("close-popup", "Close the safety popup", dashboard.OpCloseSafetyPopup),
		operationCmd("mode", "Print the safety mode", dashboard.OpSafetyMode),
		operationCmd("status", "Print the safety status", dashboard.OpSafetyStatus),
	)
}
