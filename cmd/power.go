// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var powerOnAttempts int

var powerCmd = &cobra.Command{
	Use:   "power",
	Short: "Power the robot arm on or off",
}

var powerOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Power on the robot arm and wait for IDLE",
	Long: `Power on the robot arm and wait until the robot mode reports IDLE.

The controller ignores "power on" while it is still booting, so the command is
re-sent until the robot reaches IDLE, with one second of robot mode polling
after each send. --attempts bounds how many times "power on" is sent
(default power_on_attempts from the config, 1200).`,
	Args: cobra.NoArgs,
	RunE: runPowerOn,
}

func init() {
	rootCmd.AddCommand(powerCmd)
	powerCmd.AddCommand(powerOnCmd)
	powerCmd.AddCommand(operationCmd("off", "Power off the robot arm", dashboard.OpPowerOff))
	rootCmd.AddCommand(operationCmd("brake-release", "Release the brakes and wait for RUNNING", dashboard.OpBrakeRelease))

	powerOnCmd.Flags().IntVar(&powerOnAttempts, "attempts", 0, "Maximum number of times \"power on\" is sent before giving up")
}

func runPowerOn(cmd *cobra.Command, args []string) error {
	attempts := cfg.Dashboard.PowerOnAttempts
	if cmd.Flags().Changed("attempts") {
		attempts = powerOnAttempts
	}

	return withSession(cmd, func(s *session) error {
		return reportResult(cmd.OutOrStdout(), s.client.InvokeAttempts(dashboard.OpPowerOn, "", attempts))
	})
}
