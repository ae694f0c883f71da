// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Load, run and inspect robot programs",
}

var installationCmd = &cobra.Command{
	Use:   "installation",
	Short: "Manage the robot installation",
}

func init() {
	rootCmd.AddCommand(programCmd)
	programCmd.AddCommand(
		operationCmd("load <program.urp>", "Load a program and wait until it is reported loaded", dashboard.OpLoadProgram),
		operationCmd("play", "Start the loaded program and wait for PLAYING", dashboard.OpPlay),
		operationCmd("pause", "Pause the running program and wait for PAUSED", dashboard.OpPause),
		operationCmd("stop", "Stop the program and wait for STOPPED", dashboard.OpStop),
		operationCmd("state", "Print the program state", dashboard.OpProgramState),
		operationCmd("loaded", "Print the loaded program", dashboard.OpGetLoadedProgram),
		operationCmd("running", "Report whether a program is running", dashboard.OpRunning),
		operationCmd("saved", "Report whether the loaded program is saved", dashboard.OpIsProgramSaved),
	)

	rootCmd.AddCommand(installationCmd)
	installationCmd.AddCommand(
		operationCmd("load <installation>", "Load an installation file", dashboard.OpLoadInstallation),
	)
}
