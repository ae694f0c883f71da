// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/dashctl/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string

	// Dashboard connection flags
	host        string
	port        int
	readTimeout time.Duration

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Serial console flags
	portName string
	baudRate int

	logLevel       string
	transcriptPath string
)

// Loaded by the root PersistentPreRunE.
var (
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "dashctl",
	Short: "Robot dashboard server client",
	Long: `dashctl - A CLI tool for the robot controller dashboard server.

Sends administrative commands (power, brakes, programs, popups, safety,
diagnostics) over the line-oriented dashboard protocol on TCP port 29999.
Every command first checks the controller's software version and refuses
commands the connected controller does not support, without sending them.

Connection modes:
  TCP:       --host 192.168.56.101 [--port 29999]
  WebSocket: --url ws://host/path [--username user]
  Serial:    --serial /dev/ttyUSB0 [--baud 115200]

Settings are read from --config, or dashctl.yaml in the working directory
when present. Flags override the file.

For WebSocket authentication, the password is read from the DASHCTL_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.

Exit codes:
  0 - Command succeeded
  1 - Command failed, was refused, or is unsupported on this controller
  2 - Connection error or timeout`,
	Version:            "1.0.0",
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  loadSettings,
	PersistentPostRunE: closeSettings,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default dashctl.yaml if present)")

	rootCmd.PersistentFlags().StringVarP(&host, "host", "H", "", "Dashboard server host")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "P", 0, "Dashboard server port")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", 0, "Reply timeout for ordinary commands")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&portName, "serial", "s", "", "Serial console device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&transcriptPath, "transcript", "", "Append every exchange to this CBOR transcript")
}

// Execute runs the root command and reports its error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !isQuiet(err) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func loadSettings(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	cfg = loaded

	log, logCloser, err = setupLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	return nil
}

func closeSettings(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		err := logCloser.Close()
		logCloser = nil
		return err
	}
	return nil
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
// A connection flag also selects its transport.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("host") {
		c.Dashboard.Host = host
		c.Transport.Kind = "tcp"
	}
	if flags.Changed("port") {
		c.Dashboard.Port = port
	}
	if flags.Changed("read-timeout") {
		c.Dashboard.ReadTimeout = readTimeout
	}

	if flags.Changed("url") {
		c.Transport.Kind = "websocket"
		c.Transport.URL = wsURL
	}
	if flags.Changed("username") {
		c.Transport.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		c.Transport.NoSSLVerify = wsNoSSLVerify
	}

	if flags.Changed("serial") {
		c.Transport.Kind = "serial"
		c.Transport.SerialPort = portName
	}
	if flags.Changed("baud") {
		c.Transport.BaudRate = baudRate
	}

	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("transcript") {
		c.Transcript.Path = transcriptPath
	}
}
