// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive dashboard session",
	Long: `Open an interactive session with the dashboard server.

Each line is sent as-is and the reply is printed. Lines starting with a dot
are handled locally:

  .help              Show this help
  .version           Show the controller version and variant
  .ops               List catalog operations
  .op <name> [arg]   Invoke a catalog operation with version checking
  .reconnect         Reconnect after a timeout or dropped connection
  .quit              Leave the shell

On a terminal the shell provides line editing and history in
~/.dashctl_history. When input is piped, lines are read one per line.`,
	Args: cobra.NoArgs,
	RunE: runShellCmd,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

const shellHelp = `.help              Show this help
.version           Show the controller version and variant
.ops               List catalog operations
.op <name> [arg]   Invoke a catalog operation with version checking
.reconnect         Reconnect after a timeout or dropped connection
.quit              Leave the shell
`

// lineReader is the part of LineEditor the shell needs.
type lineReader interface {
	GetLine(prompt string) (string, error)
}

func runShellCmd(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return &resultError{res: dashboard.Result{Kind: dashboard.KindConnectionFailed, Err: err}}
	}
	defer s.Close()

	editor := NewLineEditor(cmd.InOrStdin(), cmd.OutOrStdout())
	defer editor.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connected to %s\n", s.connInfo)
	fmt.Fprintf(out, "%s\n", s.client.Greeting())
	if editor.IsInteractive() {
		fmt.Fprintln(out, `Type ".help" for help, ".quit" to leave.`)
	}

	return runShell(cmd.Context(), s.client, editor, out)
}

// runShell reads lines until .quit or end of input.
func runShell(ctx context.Context, client *dashboard.Client, in lineReader, out io.Writer) error {
	for {
		line, err := in.GetLine("dashboard> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := shellMeta(ctx, client, line, out); quit {
				return nil
			}
			continue
		}

		reply, err := client.Exchange(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if !client.IsConnected() {
				fmt.Fprintln(out, `disconnected, use ".reconnect"`)
			}
			continue
		}
		fmt.Fprintln(out, reply)
	}
}

// shellMeta runs a dot command and reports whether the shell should exit.
func shellMeta(ctx context.Context, client *dashboard.Client, line string, out io.Writer) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".quit", ".exit":
		return true

	case ".help":
		fmt.Fprint(out, shellHelp)

	case ".version":
		gate := client.Gate()
		if !gate.Known() {
			fmt.Fprintln(out, "version unknown (not connected)")
			break
		}
		fmt.Fprintf(out, "%s (%s %s)\n", gate.Raw, gate.Variant, gate.Version)

	case ".ops":
		if err := printCatalog(out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	case ".op":
		if len(fields) < 2 {
			fmt.Fprintln(out, "usage: .op <name> [arg]")
			break
		}
		res := client.Invoke(operationName(fields[1]), strings.Join(fields[2:], " "))
		if err := reportResult(out, res); err != nil && !isQuiet(err) {
			fmt.Fprintf(out, "error: %v\n", err)
		}

	case ".reconnect":
		client.Disconnect()
		if err := client.Connect(ctx); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			break
		}
		fmt.Fprintln(out, client.Greeting())

	default:
		fmt.Fprintf(out, "unknown command %s, try .help\n", fields[0])
	}
	return false
}
