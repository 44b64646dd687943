// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/vpk

// Package logging configures the process-wide slog logger for unvpk.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Setup configures the global slog logger with a colored stderr handler.
// If logOutputDir is non-empty, logs are also written as JSON to a
// timestamped file in that directory; the returned closer releases it.
func Setup(levelStr string, logOutputDir string, noColor bool) (io.Closer, error) {
	level := ParseLevel(levelStr)

	if logOutputDir == "" {
		slog.SetDefault(New(os.Stderr, nil, level, noColor))
		return io.NopCloser(nil), nil
	}

	logDir := os.ExpandEnv(logOutputDir)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("create log output directory: %w", err)
	}

	logFilePath := filepath.Join(logDir, fmt.Sprintf("unvpk_%s.log", time.Now().Format("20060102_150405")))
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	slog.SetDefault(New(os.Stderr, logFile, level, noColor))
	slog.Debug("logging to file", "path", logFilePath)

	return logFile, nil
}

// New builds a logger writing colored text to console and, when file is
// not nil, JSON records to file.
func New(console io.Writer, file io.Writer, level slog.Level, noColor bool) *slog.Logger {
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	})

	if file == nil {
		return slog.New(consoleHandler)
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
}

// ParseLevel converts a string log level to slog.Level; unknown names mean info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
