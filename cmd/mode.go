// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var operationalModeCmd = &cobra.Command{
	Use:   "operational-mode",
	Short: "Operational mode (e-Series)",
}

var userRoleCmd = &cobra.Command{
	Use:   "user-role",
	Short: "User role (CB3)",
}

func init() {
	rootCmd.AddCommand(operationalModeCmd)
	operationalModeCmd.AddCommand(
		operationCmd("get", "Print the operational mode", dashboard.OpGetOperationalMode),
		operationCmd("set <manual|automatic>", "Set the operational mode", dashboard.OpSetOperationalMode),
		operationCmd("clear", "Hand the operational mode back to the pendant", dashboard.OpClearOperationalMode),
	)

	rootCmd.AddCommand(userRoleCmd)
	userRoleCmd.AddCommand(
		operationCmd("get", "Print the user role", dashboard.OpGetUserRole),
		operationCmd("set <role>", "Set the user role", dashboard.OpSetUserRole),
	)

	rootCmd.AddCommand(operationCmd("remote-control", "Report whether the robot is in remote control", dashboard.OpIsInRemoteControl))
}
