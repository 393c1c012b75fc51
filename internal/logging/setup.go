// Package logging configures slog handlers for the aurite CLI and runtime.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a level string to a slog.Level, defaulting to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTextHandler builds a human-readable slog handler backed by charmbracelet/log.
// The "trace" level enables caller reporting in addition to debug output.
func NewTextHandler(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	lvl := log.InfoLevel
	reportCaller := false
	reportTimestamp := false
	switch strings.ToLower(logLevel) {
	case "trace":
		lvl = log.DebugLevel
		reportCaller = true
		reportTimestamp = true
	case "debug":
		lvl = log.DebugLevel
		reportTimestamp = true
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return log.NewWithOptions(writer, log.Options{
		Level:           lvl,
		ReportCaller:    reportCaller,
		ReportTimestamp: reportTimestamp,
	})
}

// NewJSONHandler builds a JSON slog handler for machine-readable output.
func NewJSONHandler(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	return slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     ParseLevel(logLevel),
		AddSource: strings.EqualFold(logLevel, "trace"),
	})
}

// Setup installs the default process logger. Format is "text" or "json".
func Setup(logLevel, format string) {
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = NewJSONHandler(logLevel, nil)
	} else {
		handler = NewTextHandler(logLevel, nil)
	}
	slog.SetDefault(slog.New(handler))
}
