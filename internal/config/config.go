// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when --config is not given and the file exists.
const DefaultPath = "dashctl.yaml"

type Config struct {
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Transport  TransportConfig  `yaml:"transport"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Transcript TranscriptConfig `yaml:"transcript"`
}

type DashboardConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	PowerOnAttempts int           `yaml:"power_on_attempts"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
}

type TransportConfig struct {
	Kind        string `yaml:"kind"` // tcp, websocket or serial
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
	SerialPort  string `yaml:"serial_port"`
	BaudRate    int    `yaml:"baud"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TranscriptConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig reads path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path when given, else DefaultPath when present, else defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return LoadConfig(DefaultPath)
	}
	return GetDefaultConfig(), nil
}

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			Host:            "127.0.0.1",
			Port:            29999,
			ReadTimeout:     1 * time.Second,
			ConnectTimeout:  10 * time.Second,
			PowerOnAttempts: 1200,
			MonitorInterval: 500 * time.Millisecond,
		},
		Transport: TransportConfig{
			Kind:     "tcp",
			BaudRate: 115200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error

	switch c.Transport.Kind {
	case "tcp":
		if c.Dashboard.Host == "" {
			errs = append(errs, errors.New("dashboard.host is required for tcp transport"))
		}
		if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
			errs = append(errs, fmt.Errorf("dashboard.port %d out of range", c.Dashboard.Port))
		}
	case "websocket":
		if c.Transport.URL == "" {
			errs = append(errs, errors.New("transport.url is required for websocket transport"))
		}
	case "serial":
		if c.Transport.SerialPort == "" {
			errs = append(errs, errors.New("transport.serial_port is required for serial transport"))
		}
		if c.Transport.BaudRate <= 0 {
			errs = append(errs, fmt.Errorf("transport.baud %d must be positive", c.Transport.BaudRate))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport.kind %q (use tcp, websocket or serial)", c.Transport.Kind))
	}

	if c.Dashboard.ReadTimeout <= 0 {
		errs = append(errs, errors.New("dashboard.read_timeout must be positive"))
	}
	if c.Dashboard.PowerOnAttempts <= 0 {
		errs = append(errs, errors.New("dashboard.power_on_attempts must be positive"))
	}
	if c.Dashboard.MonitorInterval <= 0 {
		errs = append(errs, errors.New("dashboard.monitor_interval must be positive"))
	}

	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			errs = append(errs, errors.New("log.file_path is required when log.output is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown log.output %q", c.Log.Output))
	}

	return errors.Join(errs...)
}
