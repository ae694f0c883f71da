// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import "github.com/Thermoquad/dashctl/pkg/dashboard"

func init() {
	flightReport := operationCmd("flight-report <controller|software|system>", "Generate a flight report", dashboard.OpGenerateFlightReport)
	flightReport.Long += "The reply can take up to 3 minutes.\n"

	supportFile := operationCmd("support-file <directory>", "Generate a support file in a directory on the controller", dashboard.OpGenerateSupportFile)
	supportFile.Long += "The reply can take up to 10 minutes.\n"

	rootCmd.AddCommand(flightReport, supportFile)
}

