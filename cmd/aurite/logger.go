package main

import (
	"github.com/aurite-ai/aurite-go/internal/logging"
)

// SetupLogger configures the default logger from the global CLI flags.
func SetupLogger(logLevel, format string) {
	logging.Setup(logLevel, format)
}
