// Package logger provides a shared charmbracelet/log configuration for the
// core's diagnostic sinks (DatasetWarning, ScriptError) and the CLI driver.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a logger with prefix that respects the process-wide log
// level set via log.SetLevel.
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// NewWithConfig creates a logger with explicit level, caller, timestamp, and
// formatter settings, for callers that don't want the process-wide default.
func NewWithConfig(prefix string, level log.Level, caller, showTimestamp bool, formatter log.Formatter) *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          prefix,
		Level:           level,
		ReportCaller:    caller,
		ReportTimestamp: showTimestamp,
		Formatter:       formatter,
	})
}
