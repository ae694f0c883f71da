// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
)

// ============================================================
// Catalog commands
// ============================================================

func TestCommands_EndToEnd(t *testing.T) {
	replies := statusReplies()
	replies["programState"] = "PLAYING pick.urp"

	tests := []struct {
		name     string
		args     []string
		wantOut  string
		wantCode int
		wantSent string
	}{
		{"program state", []string{"program", "state"}, "PLAYING pick.urp\n", 0, "programState"},
		{"safety mode", []string{"safety", "mode"}, "Safetymode: NORMAL\n", 0, "safetymode"},
		{"program play", []string{"program", "play"}, "play: ok\n", 0, "play"},
		{"saved is true", []string{"program", "saved"}, "true pick.urp\n", 0, "isProgramSaved"},
		{"running is false", []string{"program", "running"}, "Program running: false\n", 1, "running"},
		{"query by dashed name", []string{"query", "robot-mode"}, "Robotmode: IDLE\n", 0, "robotmode"},
		{"raw line", []string{"raw", "robotmode"}, "Robotmode: IDLE\n", 0, "robotmode"},
		{"raw unknown", []string{"raw", "dance"}, "could not understand: 'dance'\n", 0, "dance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := startStub(t, eSeriesReply, replies)

			out, err := execute(t, ss, tt.args...)
			if out != tt.wantOut {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if code := ExitCode(err); code != tt.wantCode {
				t.Errorf("exit code = %d (%v), want %d", code, err, tt.wantCode)
			}
			if !slices.Contains(ss.commands(), tt.wantSent) {
				t.Errorf("server saw %q, want %q", ss.commands(), tt.wantSent)
			}
		})
	}
}

func TestCommands_UnsupportedNeverSent(t *testing.T) {
	ss := startStub(t, eSeriesReply, statusReplies())

	out, err := execute(t, ss, "user-role", "get")
	if code := ExitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if out != "" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("err = %v", err)
	}
	if slices.Contains(ss.commands(), "getUserRole") {
		t.Error("gated command reached the server")
	}
}

func TestCommands_InvalidArgument(t *testing.T) {
	ss := startStub(t, eSeriesReply, statusReplies())

	_, err := execute(t, ss, "popup", "show", "line one\nline two")
	if code := ExitCode(err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	for _, sent := range ss.commands() {
		if strings.HasPrefix(sent, "popup") || strings.HasPrefix(sent, "line two") {
			t.Errorf("invalid popup reached the server: %q", sent)
		}
	}
}

func TestCommands_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	_, err = execute(t, nil, "--host", "127.0.0.1", "--port", strconv.Itoa(port), "program", "state")
	if code := ExitCode(err); code != 2 {
		t.Errorf("exit code = %d (%v), want 2", code, err)
	}
}

func TestCommands_Version(t *testing.T) {
	ss := startStub(t, cb3Reply, nil)

	out, err := execute(t, ss, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{cb3Reply, "Version: 3.15.7.106331", "Variant: CB3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommands_Quit(t *testing.T) {
	ss := startStub(t, eSeriesReply, nil)

	out, err := execute(t, ss, "quit")
	if err != nil {
		t.Fatalf("quit failed: %v", err)
	}
	if out != "quit: ok\n" {
		t.Errorf("output = %q", out)
	}
}

func TestCommands_Ops(t *testing.T) {
	out, err := execute(t, nil, "ops")
	if err != nil {
		t.Fatalf("ops failed: %v", err)
	}
	for _, want := range []string{"OPERATION", "polyscope-version", "set-user-role", "unsupported", "generate-flight-report"} {
		if !strings.Contains(out, want) {
			t.Errorf("ops output missing %q", want)
		}
	}
}

func TestCommands_QueryUnknown(t *testing.T) {
	_, err := execute(t, nil, "query", "make-coffee")
	if err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Errorf("err = %v", err)
	}
}

func TestDiagnostics(t *testing.T) {
	replies := statusReplies()
	replies["generate flight report system"] = "Flight Report generated with id [42]"
	replies["generate support file /programs"] = "Completed successfully: /programs/support.zip"
	ss := startStub(t, eSeriesReply, replies)

	tests := []struct {
		args    []string
		wantOut string
	}{
		{[]string{"flight-report", "system"}, "generate flight report: ok\n"},
		{[]string{"support-file", "/programs"}, "generate support file: ok\n"},
	}
	for _, tt := range tests {
		out, err := execute(t, ss, tt.args...)
		if err != nil {
			t.Errorf("%v failed: %v", tt.args, err)
		}
		if out != tt.wantOut {
			t.Errorf("%v output = %q, want %q", tt.args, out, tt.wantOut)
		}
	}

	fr, _, err := rootCmd.Find([]string{"flight-report"})
	if err != nil || !strings.Contains(fr.Long, "3 minutes") {
		t.Errorf("flight-report help = %q, %v", fr.Long, err)
	}
}

func TestPowerOn_AttemptsBoundSends(t *testing.T) {
	replies := statusReplies()
	replies["robotmode"] = "Robotmode: POWER_OFF"
	replies["power on"] = "Powering on"
	ss := startStub(t, eSeriesReply, replies)

	_, err := execute(t, ss, "power", "on", "--attempts", "2")
	if code := ExitCode(err); code != 1 {
		t.Errorf("exit code = %d (%v), want 1", code, err)
	}

	sends, polls := 0, 0
	for _, sent := range ss.commands() {
		switch sent {
		case "power on":
			sends++
		case "robotmode":
			polls++
		}
	}
	if sends != 2 {
		t.Errorf("power on sent %d times, want 2", sends)
	}
	if polls <= sends {
		t.Errorf("robot mode polled %d times for %d sends, want several per send", polls, sends)
	}

	usage := powerOnCmd.Flags().Lookup("attempts").Usage
	if !strings.Contains(usage, `"power on" is sent`) {
		t.Errorf("attempts usage = %q", usage)
	}
}

// ============================================================
// Transcript recording and replay
// ============================================================

func TestTranscript_RecordThenPrint(t *testing.T) {
	ss := startStub(t, eSeriesReply, statusReplies())
	path := filepath.Join(t.TempDir(), "session.cbor")

	if _, err := execute(t, ss, "--transcript", path, "safety", "mode"); err != nil {
		t.Fatalf("safety mode failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("transcript not written: %v", err)
	}

	out, err := execute(t, nil, "transcript", "--stats", path)
	if err != nil {
		t.Fatalf("transcript failed: %v", err)
	}
	for _, want := range []string{"PolyscopeVersion -> " + eSeriesReply, "safetymode -> Safetymode: NORMAL", "Total Exchanges:          2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// ============================================================
// Ping
// ============================================================

func TestPing(t *testing.T) {
	ss := startStub(t, eSeriesReply, statusReplies())

	out, err := execute(t, ss, "ping", "--count", "3", "--interval", "1ms")
	if err != nil {
		t.Fatalf("ping failed: %v\n%s", err, out)
	}
	if got := strings.Count(out, "Robotmode: IDLE, rtt="); got != 3 {
		t.Errorf("%d successful pings, want 3:\n%s", got, out)
	}
	if !strings.Contains(out, "3 pings sent, 3 replies received, 0% loss") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestPing_Loss(t *testing.T) {
	ss := startStub(t, eSeriesReply, statusReplies())

	// A command with an embedded terminator is rejected before it is sent.
	out, err := execute(t, ss, "ping", "--count", "1", "--command", "robot\rmode")
	if ExitCode(err) != 1 {
		t.Errorf("exit code = %d (%v), want 1:\n%s", ExitCode(err), err, out)
	}
	if !strings.Contains(out, "FAILED") {
		t.Errorf("output = %q", out)
	}
}
