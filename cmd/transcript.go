// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/dashctl/pkg/transcript"
	"github.com/spf13/cobra"
)

var (
	transcriptStats      bool
	transcriptFailedOnly bool
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <file>",
	Short: "Display a recorded exchange transcript",
	Long: `Decode and display a CBOR transcript written with --transcript.

Each exchange is shown with its timestamp, command, reply and round-trip time.
Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.Flags().BoolVar(&transcriptStats, "stats", false, "Print statistics after the exchanges")
	transcriptCmd.Flags().BoolVar(&transcriptFailedOnly, "failed", false, "Only show failed exchanges")
}

func runTranscript(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return printTranscript(cmd.OutOrStdout(), in, transcriptFailedOnly, transcriptStats)
}

func printTranscript(out io.Writer, in io.Reader, failedOnly, withStats bool) error {
	r := transcript.NewReader(in)
	stats := transcript.NewStatistics()

	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}

		stats.Update(rec)
		if failedOnly && !rec.Failed() {
			continue
		}
		fmt.Fprintln(out, rec.Format())
	}

	if withStats {
		fmt.Fprintln(out)
		fmt.Fprint(out, stats.String())
	}
	return nil
}
