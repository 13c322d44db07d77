// ABOUTME: Structured logger construction for the vitals CLI and services.
// ABOUTME: Wraps charmbracelet/log with the tool prefix and a verbose switch.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Verbose enables debug output.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "vitals",
		Level:           level,
		ReportTimestamp: verbose,
	})
}

// Default returns a stderr logger at info level.
func Default() *log.Logger {
	return New(os.Stderr, false)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
