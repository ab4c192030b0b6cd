// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Attribute keys shared by every component
const (
	KeyComponent = "component"
	KeyRunID     = "run_id"
)

// Component names used with KeyComponent
const (
	ComponentApp      = "app"
	ComponentShell    = "shell"
	ComponentPipeline = "pipeline"
	ComponentDownload = "download"
	ComponentMerge    = "merge"
)

// ParseLevel maps "debug", "info", "warn", "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a structured logger with the given level and format.
// format: "json" or "text" (default "text"). w defaults to stderr so that
// diagnostics never interleave with the interactive menu on stdout.
func New(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	return slog.New(h)
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// For returns log tagged with the component attribute, or a discarding
// logger when log is nil.
func For(log *slog.Logger, component string) *slog.Logger {
	if log == nil {
		log = Discard()
	}
	return log.With(KeyComponent, component)
}
