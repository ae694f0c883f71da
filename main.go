// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// dashctl - Robot Dashboard Server Client
//
// A CLI tool for sending administrative commands to a robot controller's
// dashboard server and monitoring the robot's state.

package main

import (
	"os"

	"github.com/Thermoquad/dashctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
