// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
)

// ============================================================
// Exit codes
// ============================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"negative", &resultError{res: dashboard.Result{Kind: dashboard.KindNegative}}, 1},
		{"unsupported", &resultError{res: dashboard.Result{Kind: dashboard.KindUnsupported}}, 1},
		{"protocol", &resultError{res: dashboard.Result{Kind: dashboard.KindProtocolMismatch}}, 1},
		{"invalid", &resultError{res: dashboard.Result{Kind: dashboard.KindInvalid}}, 1},
		{"connection", &resultError{res: dashboard.Result{Kind: dashboard.KindConnectionFailed}}, 2},
		{"timeout", &resultError{res: dashboard.Result{Kind: dashboard.KindTimedOut}}, 2},
		{"bare timeout", &dashboard.TimeoutError{Command: "robotmode", Timeout: time.Second}, 2},
		{"wrapped connection", fmt.Errorf("raw: %w", &dashboard.ConnectionError{Message: "write failed"}), 2},
		{"other", errors.New("unknown flag"), 1},
		{"ping loss", errPingLoss, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestResultError_Message(t *testing.T) {
	tests := []struct {
		res  dashboard.Result
		want string
	}{
		{dashboard.Result{Op: dashboard.OpPlay, Kind: dashboard.KindNegative}, "play: negative"},
		{dashboard.Result{Op: dashboard.OpRunning, Kind: dashboard.KindNegative, Value: "Program running: false"}, "running: negative (Program running: false)"},
		{dashboard.Result{Kind: dashboard.KindConnectionFailed, Err: errors.New("refused")}, "connect: refused"},
	}

	for _, tt := range tests {
		err := &resultError{res: tt.res}
		if err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
		}
	}
}

// ============================================================
// Result reporting
// ============================================================

func TestReportResult(t *testing.T) {
	tests := []struct {
		name      string
		res       dashboard.Result
		wantOut   string
		wantErr   bool
		wantQuiet bool
	}{
		{
			name:    "get-style prints the reply",
			res:     dashboard.Result{Op: dashboard.OpRobotMode, Kind: dashboard.KindOK, Value: "Robotmode: IDLE"},
			wantOut: "Robotmode: IDLE\n",
		},
		{
			name:    "action prints ok",
			res:     dashboard.Result{Op: dashboard.OpPowerOff, Kind: dashboard.KindOK, Value: "Powering off"},
			wantOut: "power off: ok\n",
		},
		{
			name:      "false boolean prints the reply quietly",
			res:       dashboard.Result{Op: dashboard.OpRunning, Kind: dashboard.KindNegative, Value: "Program running: false"},
			wantOut:   "Program running: false\n",
			wantErr:   true,
			wantQuiet: true,
		},
		{
			name:    "unsupported prints nothing",
			res:     dashboard.Result{Op: dashboard.OpSetUserRole, Kind: dashboard.KindUnsupported},
			wantErr: true,
		},
		{
			name:    "exhausted poll prints nothing",
			res:     dashboard.Result{Op: dashboard.OpPlay, Kind: dashboard.KindNegative},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := reportResult(&buf, tt.res)
			if buf.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", buf.String(), tt.wantOut)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if isQuiet(err) != tt.wantQuiet {
				t.Errorf("isQuiet = %v, want %v", isQuiet(err), tt.wantQuiet)
			}
		})
	}
}

// ============================================================
// Command construction
// ============================================================

func TestOperationCmd_Args(t *testing.T) {
	load := operationCmd("load <program>", "Load a program", dashboard.OpLoadProgram)
	if err := load.Args(load, nil); err == nil {
		t.Error("load should require an argument")
	}
	if err := load.Args(load, []string{"pick.urp"}); err != nil {
		t.Errorf("load pick.urp: %v", err)
	}

	play := operationCmd("play", "Play", dashboard.OpPlay)
	if err := play.Args(play, []string{"extra"}); err == nil {
		t.Error("play should reject arguments")
	}
	if !strings.Contains(play.Long, `Sends "play"`) || !strings.Contains(play.Long, "programState") {
		t.Errorf("help = %q", play.Long)
	}
}

func TestOperationCmd_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an operation missing from the catalog")
		}
	}()
	operationCmd("bogus", "Bogus", dashboard.Operation("bogus"))
}

func TestOperationName(t *testing.T) {
	tests := map[string]dashboard.Operation{
		"robot-mode":       dashboard.OpRobotMode,
		"Robot-Mode":       dashboard.OpRobotMode,
		"is-program-saved": dashboard.OpIsProgramSaved,
		"play":             dashboard.OpPlay,
	}
	for in, want := range tests {
		if got := operationName(in); got != want {
			t.Errorf("operationName(%q) = %q, want %q", in, got, want)
		}
	}
}
