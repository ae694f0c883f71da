// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var popupCmd = &cobra.Command{
	Use:   "popup",
	Short: "Show or close popups on the teach pendant",
}

func init() {
	rootCmd.AddCommand(popupCmd)
	popupCmd.AddCommand(
		operationCmd("show <text>", "Show a popup with the given text", dashboard.OpPopup),
		operationCmd("close", "Close the popup", dashboard.OpClosePopup),
	)
	rootCmd.AddCommand(operationCmd("log <message>", "Add a message to the controller log", dashboard.OpAddToLog))
}
