package config

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// NewLogger builds the root logger. debug forces DebugLevel; otherwise
// level is parsed, falling back to info for unknown names.
func NewLogger(w io.Writer, level string, debug bool) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if debug {
		lvl = log.DebugLevel
	}

	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}
