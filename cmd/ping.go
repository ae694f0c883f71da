// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var (
	pingCount    int
	pingInterval time.Duration
	pingCommand  string
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure dashboard round-trip time",
	Long: `Send a status query repeatedly and report the round-trip time of each
exchange.

The default query is "robotmode", which every controller answers. A timeout
disconnects the client, so the next ping reconnects first.

This is useful for verifying:
  - The dashboard port is reachable
  - The server answers within the read timeout
  - The link is stable over many exchanges

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between pings")
	pingCmd.Flags().StringVar(&pingCommand, "command", "robotmode", "Line to send")
}

// errPingLoss reports that some pings went unanswered.
var errPingLoss = errors.New("one or more pings failed")

func runPing(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return &resultError{res: dashboard.Result{Kind: dashboard.KindConnectionFailed, Err: err}}
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dashctl - Dashboard Ping Test\n")
	fmt.Fprintf(out, "Connection: %s\n", s.connInfo)
	fmt.Fprintf(out, "Server: %s\n", s.client.Greeting())
	fmt.Fprintf(out, "Count: %d x %q\n\n", pingCount, pingCommand)

	successCount := 0
	for i := 1; i <= pingCount; i++ {
		fmt.Fprintf(out, "Ping %d/%d: ", i, pingCount)

		if !s.client.IsConnected() {
			if err := s.client.Connect(cmd.Context()); err != nil {
				fmt.Fprintf(out, "RECONNECT FAILED: %v\n", err)
				continue
			}
		}

		start := time.Now()
		reply, err := s.client.Exchange(pingCommand)
		rtt := time.Since(start)

		var timeoutErr *dashboard.TimeoutError
		switch {
		case errors.As(err, &timeoutErr):
			fmt.Fprintf(out, "TIMEOUT (no reply in %v)\n", timeoutErr.Timeout)
		case err != nil:
			fmt.Fprintf(out, "FAILED: %v\n", err)
		default:
			fmt.Fprintf(out, "%s, rtt=%v\n", reply, rtt.Round(time.Microsecond))
			successCount++
		}

		if i < pingCount {
			time.Sleep(pingInterval)
		}
	}

	stats := s.stats.Snapshot()
	fmt.Fprintf(out, "\n--- Ping statistics ---\n")
	lossPercent := 0.0
	if pingCount > 0 {
		lossPercent = float64(pingCount-successCount) / float64(pingCount) * 100
	}
	fmt.Fprintf(out, "%d pings sent, %d replies received, %.0f%% loss\n", pingCount, successCount, lossPercent)
	fmt.Fprint(out, stats.String())

	if successCount < pingCount {
		return errPingLoss
	}
	return nil
}
