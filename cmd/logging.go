// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Thermoquad/dashctl/internal/config"
	"github.com/sirupsen/logrus"
)

// setupLogger builds the process logger. stderr is used for the "stderr"
// output so commands can be tested with cobra's SetErr. The returned closer
// is non-nil when logging goes to a file.
func setupLogger(lc config.LogConfig, stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()

	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if lc.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	switch lc.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		file, err := os.OpenFile(lc.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.SetOutput(file)
		return l, file, nil
	default:
		l.SetOutput(stderr)
	}

	return l, nil, nil
}
