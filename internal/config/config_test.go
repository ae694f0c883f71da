// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestGetDefaultConfig_Valid(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Dashboard.Port != 29999 {
		t.Errorf("default port = %d", cfg.Dashboard.Port)
	}
	if cfg.Dashboard.ReadTimeout != time.Second {
		t.Errorf("default read timeout = %v", cfg.Dashboard.ReadTimeout)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dashboard:
  host: 192.168.56.101
  read_timeout: 2s
log:
  level: debug
  format: json
metrics:
  enabled: true
  addr: 127.0.0.1:9100
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Dashboard.Host != "192.168.56.101" {
		t.Errorf("host = %q", cfg.Dashboard.Host)
	}
	if cfg.Dashboard.ReadTimeout != 2*time.Second {
		t.Errorf("read timeout = %v", cfg.Dashboard.ReadTimeout)
	}
	if cfg.Dashboard.Port != 29999 {
		t.Errorf("port should keep its default, got %d", cfg.Dashboard.Port)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "127.0.0.1:9100" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad yaml", "dashboard: [", "failed to parse"},
		{"bad port", "dashboard:\n  port: 70000\n", "out of range"},
		{"unknown transport", "transport:\n  kind: carrier-pigeon\n", "unknown transport.kind"},
		{"websocket without url", "transport:\n  kind: websocket\n", "transport.url is required"},
		{"serial without port", "transport:\n  kind: serial\n", "transport.serial_port is required"},
		{"log file without path", "log:\n  output: file\n", "log.file_path is required"},
		{"zero read timeout", "dashboard:\n  read_timeout: 0s\n", "read_timeout must be positive"},
		{"zero monitor interval", "dashboard:\n  monitor_interval: 0s\n", "monitor_interval must be positive"},
		{"negative monitor interval", "dashboard:\n  monitor_interval: -1s\n", "monitor_interval must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Dashboard.Port = 0
	cfg.Dashboard.PowerOnAttempts = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"dashboard.port", "power_on_attempts"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dashboard.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Dashboard.Host)
	}
}

func TestLoad_DefaultPathInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DefaultPath), []byte("dashboard:\n  host: robot.local\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Dashboard.Host != "robot.local" {
		t.Errorf("host = %q", cfg.Dashboard.Host)
	}
}
