package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

var (
	verbose bool
	logger  = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "spm",
		Level:  log.InfoLevel,
	})
)

// SetVerbose toggles debug output
func SetVerbose(v bool) {
	verbose = v
	if v {
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetLevel(log.InfoLevel)
}

// IsVerbose reports whether debug output is enabled
func IsVerbose() bool {
	return verbose
}

// Debug prints a diagnostic message when verbose output is enabled
func Debug(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...))
}

// Logger returns the structured logger behind Debug, for key/value diagnostics
func Logger() *log.Logger {
	return logger
}
