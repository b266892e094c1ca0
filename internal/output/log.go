// Package output provides terminal output utilities.
package output

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns a logger writing to w. Verbose output adds debug messages
// and timestamps.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05",
	})
}
