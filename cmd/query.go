// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <operation> [argument...]",
	Short: "Invoke any catalog operation by name",
	Long: `Invoke a catalog operation by name.

Operation names may use dashes instead of spaces, so "robot-mode" and
"robot mode" are the same operation. Remaining arguments form the operation's
argument. Run "dashctl ops" for the full list.`,
	Example: `  dashctl query robot-mode
  dashctl query load-program /programs/pick.urp`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List catalog operations and their minimum versions",
	Args:  cobra.NoArgs,
	RunE: runOps,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(opsCmd)
}

// operationName normalizes a command-line operation name.
func operationName(name string) dashboard.Operation {
	return dashboard.Operation(strings.ToLower(strings.ReplaceAll(name, "-", " ")))
}

func runQuery(cmd *cobra.Command, args []string) error {
	op := operationName(args[0])
	if _, ok := dashboard.Lookup(op); !ok {
		return fmt.Errorf("%w: %q (see dashctl ops)", dashboard.ErrUnknownOperation, args[0])
	}
	return runOperation(cmd, op, strings.Join(args[1:], " "))
}

func runOps(cmd *cobra.Command, args []string) error {
	return printCatalog(cmd.OutOrStdout())
}

func printCatalog(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tCOMMAND\tE-SERIES\tCB3")
	for _, spec := range dashboard.Catalog() {
		eSeries, cb3 := spec.MinESeries.String(), spec.MinCB3.String()
		if spec.Ungated {
			eSeries, cb3 = "any", "any"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			strings.ReplaceAll(string(spec.Op), " ", "-"), spec.Line("<arg>"), eSeries, cb3)
	}
	return tw.Flush()
}
