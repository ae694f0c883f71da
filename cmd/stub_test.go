// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/Thermoquad/dashctl/internal/config"
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/Thermoquad/dashctl/pkg/transport"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	stubGreeting = "Connected: Universal Robots Dashboard Server"
	eSeriesReply = "URSoftware 5.9.4.1031232 (Sep 01 2021)"
	cb3Reply     = "URSoftware 3.15.7.106331 (Sep 01 2021)"
)

// ============================================================
// TCP stub dashboard server
// ============================================================

// stubServer answers PolyscopeVersion with versionLine and every other
// command from replies. Unknown commands get "could not understand".
type stubServer struct {
	listener    net.Listener
	versionLine string
	replies     map[string]string

	mu       sync.Mutex
	received []string
	conns    []net.Conn
	wg       sync.WaitGroup
}

func startStub(t *testing.T, versionLine string, replies map[string]string) *stubServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ss := &stubServer{listener: listener, versionLine: versionLine, replies: replies}
	ss.wg.Add(1)
	go ss.acceptLoop()
	t.Cleanup(ss.stop)
	return ss
}

func (ss *stubServer) port() int {
	return ss.listener.Addr().(*net.TCPAddr).Port
}

func (ss *stubServer) acceptLoop() {
	defer ss.wg.Done()
	for {
		conn, err := ss.listener.Accept()
		if err != nil {
			return
		}
		ss.mu.Lock()
		ss.conns = append(ss.conns, conn)
		ss.mu.Unlock()

		ss.wg.Add(1)
		go ss.serve(conn)
	}
}

func (ss *stubServer) serve(conn net.Conn) {
	defer ss.wg.Done()
	defer conn.Close()

	fmt.Fprintf(conn, "%s\n", stubGreeting)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		cmd := scanner.Text()

		ss.mu.Lock()
		ss.received = append(ss.received, cmd)
		ss.mu.Unlock()

		switch {
		case cmd == "PolyscopeVersion":
			fmt.Fprintf(conn, "%s\n", ss.versionLine)
		case cmd == "quit":
			fmt.Fprintf(conn, "Disconnected\n")
			return
		default:
			reply, ok := ss.replies[cmd]
			if !ok {
				reply = "could not understand: '" + cmd + "'"
			}
			fmt.Fprintf(conn, "%s\n", reply)
		}
	}
}

func (ss *stubServer) commands() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.received...)
}

func (ss *stubServer) stop() {
	ss.listener.Close()
	ss.mu.Lock()
	for _, c := range ss.conns {
		c.Close()
	}
	ss.mu.Unlock()
	ss.wg.Wait()
}

// dialStub returns a connected client for ss.
func dialStub(t *testing.T, ss *stubServer) *dashboard.Client {
	t.Helper()
	c := dashboard.NewClient(transport.NewTCP("127.0.0.1", ss.port()))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(c.Disconnect)
	return c
}

// statusReplies answers the queries every test controller supports.
func statusReplies() map[string]string {
	return map[string]string{
		"robotmode":          "Robotmode: IDLE",
		"safetymode":         "Safetymode: NORMAL",
		"programState":       "STOPPED pick.urp",
		"get loaded program": "Loaded program: /programs/pick.urp",
		"running":            "Program running: false",
		"isProgramSaved":     "true pick.urp",
		"play":               "Starting program",
	}
}

// ============================================================
// Command harness
// ============================================================

// resetFlags restores every flag to its default so tests sharing rootCmd do
// not see each other's flags as changed.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs dashctl with args against ss and returns stdout.
func execute(t *testing.T, ss *stubServer, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	resetFlags(rootCmd)

	full := args
	if ss != nil {
		full = append([]string{"--host", "127.0.0.1", "--port", strconv.Itoa(ss.port())}, args...)
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(full)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}

// useTestSettings installs defaults and a quiet logger for helpers that run
// outside rootCmd.
func useTestSettings(t *testing.T) {
	t.Helper()
	prevCfg, prevLog := cfg, log
	cfg = config.GetDefaultConfig()
	log = logrus.New()
	log.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() {
		cfg, log = prevCfg, prevLog
	})
}
