// Package logging builds the structured logger shared by every command
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// New creates a logger writing to stderr. format is "json" for one object per line,
// anything else gets the human readable console writer.
func New(level, format string) *log.Logger {
	return NewWithWriter(level, format, os.Stderr)
}

// NewWithWriter creates a logger writing to w
func NewWithWriter(level, format string, w io.Writer) *log.Logger {
	if level == "" {
		level = "info"
	}

	logger := &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "2006-01-02T15:04:05Z07:00",
	}

	if format == "json" {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w}
	}

	return logger
}

// NewSilent creates a logger that discards all output, used by tests.
func NewSilent() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
