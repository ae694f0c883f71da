// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK         = 0
	exitFailed     = 1
	exitConnection = 2
)

// resultError carries a failed operation out of a command. quiet results
// already printed their answer and only set the exit code.
type resultError struct {
	res   dashboard.Result
	quiet bool
}

func (e *resultError) Error() string {
	prefix := string(e.res.Op)
	if prefix == "" {
		prefix = "connect"
	}
	switch {
	case e.res.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.res.Err)
	case e.res.Value != "":
		return fmt.Sprintf("%s: %s (%s)", prefix, e.res.Kind, e.res.Value)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.res.Kind)
	}
}

func (e *resultError) Unwrap() error {
	return e.res.Err
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var re *resultError
	if errors.As(err, &re) {
		switch re.res.Kind {
		case dashboard.KindOK:
			return exitOK
		case dashboard.KindConnectionFailed, dashboard.KindTimedOut:
			return exitConnection
		}
		return exitFailed
	}

	var (
		connErr    *dashboard.ConnectionError
		timeoutErr *dashboard.TimeoutError
	)
	if errors.As(err, &connErr) || errors.As(err, &timeoutErr) {
		return exitConnection
	}
	return exitFailed
}

// isQuiet reports whether err was already reported on stdout.
func isQuiet(err error) bool {
	var re *resultError
	return errors.As(err, &re) && re.quiet
}

// withSession connects, runs fn and disconnects. A failed connect is
// reported as a connection failure.
func withSession(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return &resultError{res: dashboard.Result{Kind: dashboard.KindConnectionFailed, Err: err}}
	}
	defer s.Close()
	return fn(s)
}

// operationCmd builds a command that invokes one catalog operation. Any
// positional arguments are joined into the operation's argument.
func operationCmd(use, short string, op dashboard.Operation) *cobra.Command {
	spec, ok := dashboard.Lookup(op)
	if !ok {
		panic(fmt.Sprintf("operation %q missing from catalog", op))
	}

	c := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  operationHelp(short, spec),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, op, strings.Join(args, " "))
		},
	}
	if spec.Arg {
		c.Args = cobra.MinimumNArgs(1)
	} else {
		c.Args = cobra.NoArgs
	}
	return c
}

func operationHelp(short string, spec dashboard.CommandSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.\n\n", short)
	fmt.Fprintf(&b, "Sends %q to the dashboard server.\n", spec.Line("<arg>"))
	if spec.Ungated {
		b.WriteString("Available on every controller.\n")
	} else {
		fmt.Fprintf(&b, "Requires software %s (e-Series) or %s (CB3).\n", spec.MinESeries, spec.MinCB3)
	}
	if spec.Await != nil {
		fmt.Fprintf(&b, "Waits until %q confirms the change.\n", spec.Await.Query)
	}
	return b.String()
}

func runOperation(cmd *cobra.Command, op dashboard.Operation, arg string) error {
	return withSession(cmd, func(s *session) error {
		return reportResult(cmd.OutOrStdout(), s.client.Invoke(op, arg))
	})
}

// reportResult prints the answer of get-style and boolean operations and
// converts any failure into a resultError.
func reportResult(w io.Writer, res dashboard.Result) error {
	spec, _ := dashboard.Lookup(res.Op)
	answers := spec.Extract || spec.Truth != nil

	switch {
	case res.OK() && answers:
		fmt.Fprintln(w, res.Value)
		return nil
	case res.OK():
		fmt.Fprintf(w, "%s: ok\n", res.Op)
		return nil
	case res.Kind == dashboard.KindNegative && spec.Truth != nil:
		fmt.Fprintln(w, res.Value)
		return &resultError{res: res, quiet: true}
	}
	return &resultError{res: res}
}
