package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/contre95/dispatch/src/features/config"
)

// SetupLogger builds the application logger. verbose forces debug level.
func SetupLogger(cfg config.Logger, verbose bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var formatter log.Formatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		formatter = log.TextFormatter
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "Dispatch",
		Formatter:       formatter,
		Level:           Level(cfg.Level, verbose),
	})

	return slog.New(handler)
}

// Level maps a config level name to a charmbracelet level.
func Level(name string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	switch name {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
