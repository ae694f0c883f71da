// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Thermoquad/dashctl/pkg/dashboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Interactive TUI for monitoring and driving the robot",
	Long: `Monitor and drive the robot via an interactive terminal UI.

The robot mode, safety mode, program state and loaded program are polled
every monitor_interval (default 500ms).

Keys:
  p      power on          o      power off
  b      brake release     u      unlock protective stop
  space  play              a      pause
  s      stop              r      reconnect
  q      quit

Features:
  - Live controller status
  - Exchange statistics (round-trip time, timeouts)
  - Event logging
  - Automatic reconnection on connection loss
  - Optional Prometheus /metrics endpoint (metrics.enabled)

Supports TCP, serial and WebSocket connections.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

// monitorManager polls the controller and handles reconnection.
type monitorManager struct {
	client          *dashboard.Client
	interval        time.Duration
	powerOnAttempts int
	send            func(tea.Msg)
	done            chan struct{}
	reconnectReq    chan struct{}
	minBackoff      time.Duration
	maxBackoff      time.Duration
}

func newMonitorManager(client *dashboard.Client, interval time.Duration, powerOnAttempts int) *monitorManager {
	return &monitorManager{
		client:          client,
		interval:        interval,
		powerOnAttempts: powerOnAttempts,
		send:            func(tea.Msg) {},
		done:            make(chan struct{}),
		reconnectReq:    make(chan struct{}, 1),
		minBackoff:      1 * time.Second,
		maxBackoff:      30 * time.Second,
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return &resultError{res: dashboard.Result{Kind: dashboard.KindConnectionFailed, Err: err}}
	}
	defer s.Close()

	mm := newMonitorManager(s.client, cfg.Dashboard.MonitorInterval, cfg.Dashboard.PowerOnAttempts)

	m := initialMonitorModel(s.connInfo, s.client.Greeting(), s.client.Gate(), mm.run, mm.requestReconnect, s.stats.Snapshot)

	p := tea.NewProgram(m, tea.WithAltScreen())
	mm.send = p.Send

	// Log lines would tear the alt screen; route them to the event log.
	if cfg.Log.Output == "stderr" {
		log.SetOutput(io.Discard)
		log.AddHook(&tuiLogHook{send: p.Send})
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go mm.pollLoop(ctx)

	_, err = p.Run()
	close(mm.done)
	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// run invokes a key-bound operation.
func (mm *monitorManager) run(op dashboard.Operation) dashboard.Result {
	if op == dashboard.OpPowerOn {
		return mm.client.InvokeAttempts(op, "", mm.powerOnAttempts)
	}
	return mm.client.Invoke(op, "")
}

// requestReconnect asks the poll loop to drop and re-open the connection.
func (mm *monitorManager) requestReconnect() {
	select {
	case mm.reconnectReq <- struct{}{}:
	default:
	}
}

// pollLoop sends a status snapshot every interval, reconnecting whenever
// the client has been disconnected.
func (mm *monitorManager) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	for {
		if mm.client.IsConnected() {
			mm.send(mm.pollStatus())
		}

		if !mm.client.IsConnected() {
			mm.send(connectionLostMsg{})
			if !mm.reconnect(ctx) {
				return // Shutdown requested during reconnect
			}
			continue
		}

		select {
		case <-mm.done:
			return
		case <-ctx.Done():
			return
		case <-mm.reconnectReq:
			mm.client.Disconnect()
		case <-ticker.C:
		}
	}
}

// statusQueries are polled in order on every tick.
var statusQueries = []dashboard.Operation{
	dashboard.OpRobotMode,
	dashboard.OpSafetyMode,
	dashboard.OpProgramState,
	dashboard.OpGetLoadedProgram,
}

// pollStatus queries the controller once. It stops at the first failure
// that dropped the connection.
func (mm *monitorManager) pollStatus() statusMsg {
	msg := statusMsg{at: time.Now(), values: make(map[dashboard.Operation]string, len(statusQueries))}

	for _, op := range statusQueries {
		res := mm.client.Invoke(op, "")
		switch res.Kind {
		case dashboard.KindOK:
			msg.values[op] = replyValue(res.Value)
		case dashboard.KindUnsupported:
			msg.values[op] = "n/a"
		default:
			msg.values[op] = "?"
			if msg.err == nil {
				msg.err = &resultError{res: res}
			}
		}
		if !mm.client.IsConnected() {
			break
		}
	}
	return msg
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (mm *monitorManager) reconnect(ctx context.Context) bool {
	mm.client.Disconnect()

	backoff := mm.minBackoff
	for {
		select {
		case <-mm.done:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		err := mm.client.Connect(ctx)
		if err == nil {
			mm.send(reconnectedMsg{greeting: mm.client.Greeting(), gate: mm.client.Gate()})
			return true
		}
		log.Debugf("Reconnect failed: %v", err)

		// Exponential backoff
		backoff *= 2
		if backoff > mm.maxBackoff {
			backoff = mm.maxBackoff
		}
	}
}

// replyValue strips a "Label: " prefix from a status reply.
func replyValue(reply string) string {
	if i := strings.Index(reply, ": "); i >= 0 {
		return reply[i+2:]
	}
	return reply
}

// tuiLogHook forwards log entries to the event log.
type tuiLogHook struct {
	send func(tea.Msg)
}

func (h *tuiLogHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
}

func (h *tuiLogHook) Fire(entry *logrus.Entry) error {
	h.send(logEventMsg{
		at:      entry.Time,
		message: entry.Message,
		isError: entry.Level <= logrus.WarnLevel,
	})
	return nil
}
