// =============================================================================
// Fraud Account Analyzer - Logging
// =============================================================================
//
// Builds the logrus logger shared by the command layer and the pipeline.
// Core packages (normalize, columns, validation, aggregation) never log.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// TimestampFormat is used by both formatters.
const TimestampFormat = "2006-01-02 15:04:05"

// Options configures the logger.
type Options struct {
	// Level is a logrus level name. Empty means "info".
	Level string

	// File, when set, receives a copy of every entry. Its directory is
	// created if needed.
	File string

	// Verbose forces the debug level.
	Verbose bool

	// JSON selects the JSON formatter instead of text.
	JSON bool

	// Stdout overrides the console writer. Nil means os.Stdout.
	Stdout io.Writer
}

// New returns a configured logger and a function that closes the log file.
//
// RETURNS:
//   - The logger.
//   - A close function (never nil).
//   - An error if the level is unknown or the log file cannot be opened.
func New(opts Options) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	closer := func() error { return nil }

	level := opts.Level
	if level == "" {
		level = "info"
	}
	logLevel, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, closer, fmt.Errorf("invalid log level: %w", err)
	}
	if opts.Verbose {
		logLevel = logrus.DebugLevel
	}
	logger.SetLevel(logLevel)

	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: TimestampFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	}

	var out io.Writer = os.Stdout
	if opts.Stdout != nil {
		out = opts.Stdout
	}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, closer, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f.Close
	}
	logger.SetOutput(out)

	return logger, closer, nil
}

// Discard returns a logger that drops everything. Tests and library callers
// without logging use it.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
