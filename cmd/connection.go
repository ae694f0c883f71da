// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/Thermoquad/dashctl/internal/config"
	"github.com/Thermoquad/dashctl/pkg/dashboard"
	"github.com/Thermoquad/dashctl/pkg/transcript"
	"github.com/Thermoquad/dashctl/pkg/transport"
	"golang.org/x/term"
)

// passwordEnv holds the WebSocket bridge password.
const passwordEnv = "DASHCTL_PASSWORD"

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// newTransport builds the configured transport. password is only consulted
// for an authenticated WebSocket bridge.
func newTransport(c *config.Config, password func() (string, error)) (dashboard.Transport, string, error) {
	switch c.Transport.Kind {
	case "websocket":
		pw := ""
		if c.Transport.Username != "" {
			var err error
			pw, err = password()
			if err != nil {
				return nil, "", err
			}
		}
		t := transport.NewWebSocket(c.Transport.URL, c.Transport.Username, pw, c.Transport.NoSSLVerify)
		return t, t.String(), nil

	case "serial":
		t := transport.NewSerial(c.Transport.SerialPort, c.Transport.BaudRate)
		return t, t.String(), nil

	case "tcp", "":
		t := transport.NewTCP(c.Dashboard.Host, c.Dashboard.Port)
		if c.Dashboard.ConnectTimeout > 0 {
			t.DialTimeout = c.Dashboard.ConnectTimeout
		}
		return t, t.String(), nil
	}

	return nil, "", fmt.Errorf("unknown transport %q (use tcp, websocket or serial)", c.Transport.Kind)
}

// session is an open client plus everything attached to it.
type session struct {
	client   *dashboard.Client
	connInfo string
	stats    *liveStats
	closers  []func() error
}

// Close disconnects and releases the transcript and metrics server.
func (s *session) Close() {
	if s.client != nil {
		s.client.Disconnect()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Debugf("Closing session: %v", err)
		}
	}
}

// buildSession creates a client for the loaded config without connecting.
func buildSession() (*session, error) {
	t, info, err := newTransport(cfg, GetPassword)
	if err != nil {
		return nil, err
	}

	s := &session{connInfo: info, stats: newLiveStats()}
	recorders := recorderChain{s.stats}

	if cfg.Transcript.Path != "" {
		w, err := transcript.Create(cfg.Transcript.Path)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, w)
		s.closers = append(s.closers, w.Close)
	}

	opts := []dashboard.Option{
		dashboard.WithLogger(log),
		dashboard.WithReadTimeout(cfg.Dashboard.ReadTimeout),
		dashboard.WithRecorder(recorders),
	}

	if cfg.Metrics.Enabled {
		m, stop, err := startMetricsServer(cfg.Metrics.Addr)
		if err != nil {
			s.Close()
			return nil, err
		}
		opts = append(opts, dashboard.WithMetrics(m))
		s.closers = append(s.closers, stop)
	}

	s.client = dashboard.NewClient(t, opts...)
	return s, nil
}

// openSession builds a session and connects it.
func openSession(ctx context.Context) (*session, error) {
	s, err := buildSession()
	if err != nil {
		return nil, err
	}

	log.Debugf("Connecting to %s", s.connInfo)
	if err := s.client.Connect(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// recorderChain hands each exchange to every recorder in order.
type recorderChain []dashboard.Recorder

func (rc recorderChain) Record(ex dashboard.Exchange) error {
	var first error
	for _, r := range rc {
		if err := r.Record(ex); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// liveStats accumulates exchange statistics for ping and monitor.
type liveStats struct {
	mu    sync.Mutex
	stats *transcript.Statistics
}

func newLiveStats() *liveStats {
	return &liveStats{stats: transcript.NewStatistics()}
}

func (l *liveStats) Record(ex dashboard.Exchange) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats.Update(transcript.FromExchange(ex))
	return nil
}

// Snapshot returns a copy of the current statistics.
func (l *liveStats) Snapshot() transcript.Statistics {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := *l.stats
	snap.CalculateRates()
	return snap
}
