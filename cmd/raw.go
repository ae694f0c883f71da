// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rawCmd = &cobra.Command{
	Use:   "raw <command...>",
	Short: "Send a raw line and print the reply",
	Long: `Send one line to the dashboard server and print the reply line.

The line is sent as-is without a version check or reply validation, which
makes this useful for commands not in the catalog. Arguments are joined with
spaces.`,
	Example: `  dashctl raw robotmode
  dashctl raw popup Hello from dashctl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRaw,
}

func init() {
	rootCmd.AddCommand(rawCmd)
}

func runRaw(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	return withSession(cmd, func(s *session) error {
		reply, err := s.client.Exchange(line)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	})
}
