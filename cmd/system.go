// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the controller software version and variant",
	Long: `Query the PolyscopeVersion of the connected controller.

Prints the raw reply, the parsed version and whether the controller is a CB3
or an e-Series. Every other command uses this version to decide whether it is
supported.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(
		operationCmd("model", "Print the robot model", dashboard.OpGetRobotModel),
		operationCmd("serial-number", "Print the robot serial number", dashboard.OpGetSerialNumber),
		operationCmd("shutdown", "Shut down the robot and controller", dashboard.OpShutdown),
		operationCmd("quit", "Ask the server to close the connection", dashboard.OpQuit),
	)
}

func runVersion(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		res := s.client.Invoke(dashboard.OpPolyscopeVersion, "")
		if !res.OK() {
			return &resultError{res: res}
		}

		gate := s.client.Gate()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, res.Value)
		fmt.Fprintf(out, "Version: %s\n", gate.Version)
		fmt.Fprintf(out, "Variant: %s\n", gate.Variant)
		return nil
	})
}
