// Package notify delivers generated reports. Email goes out over SMTP via
// shoutrrr, and a compact run summary is published to an MQTT broker for
// home-automation consumers.
package notify

import (
	"io"
	"log"
	"log/slog"
	"path/filepath"

	"github.com/tphakala/fox-report/internal/logging"
)

// Package-level logger specific to report delivery
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar) // Dynamic level control
	closeLogger     func() error
)

func init() {
	var err error
	// Define log file path relative to working directory
	logFilePath := filepath.Join("logs", "notify.log")
	// Info is a good default; delivery failures surface as errors anyway
	initialLevel := slog.LevelInfo
	serviceLevelVar.Set(initialLevel)

	// Initialize the service-specific file logger
	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "notify", serviceLevelVar)
	if err != nil {
		// Fallback: Log error to standard log and disable service logging
		log.Printf("FATAL: Failed to initialize notify file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "notify")
		closeLogger = func() error { return nil }
	}
}

// SetLogLevel adjusts the verbosity of the delivery log.
func SetLogLevel(level slog.Level) {
	serviceLevelVar.Set(level)
}

// CloseLogger releases the delivery log file.
func CloseLogger() error {
	if closeLogger != nil {
		return closeLogger()
	}
	return nil
}
