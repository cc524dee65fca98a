// Package logging builds the logrus loggers used across the application.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// LogFile is the name of the log written next to the config file while the
// board TUI owns the terminal.
const LogFile = "an-kanban.log"

// New returns a logger writing to out in the given level and format. Format
// is "text" or "json".
func New(level, format string, out io.Writer) (*log.Logger, error) {
	logger := log.New()
	if out != nil {
		logger.SetOutput(out)
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %q. Please choose from 'text' or 'json'", format)
	}
	return logger, nil
}

// ParseLevel accepts logrus level names; empty means info.
func ParseLevel(level string) (log.Level, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid log level: %q", level)
	}
	return lvl, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// OpenFile opens the log file in dir for appending.
func OpenFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return os.OpenFile(filepath.Join(dir, LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
