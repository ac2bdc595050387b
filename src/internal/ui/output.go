// Package ui provides colored console output, prompts and debug logging for spm
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	successColor  = color.New(color.FgGreen, color.Bold)
	errorColor    = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow, color.Bold)
	infoColor     = color.New(color.FgCyan)
	progressColor = color.New(color.FgBlue)
	headerColor   = color.New(color.Bold)

	nameColor    = color.New(color.FgCyan, color.Bold)
	versionColor = color.New(color.FgMagenta, color.Bold)

	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "⚠"
	infoSymbol    = "→"
)

// Status lines go to stdout; problems go to stderr so they never mix with script output
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func line(w io.Writer, c *color.Color, prefix, format string, args []interface{}) {
	_, _ = c.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Success prints a green line with a checkmark
func Success(format string, args ...interface{}) {
	line(stdout, successColor, successSymbol, format, args)
}

// Error prints a red line with a cross to stderr
func Error(format string, args ...interface{}) {
	line(stderr, errorColor, errorSymbol, format, args)
}

// Warning prints a yellow line to stderr
func Warning(format string, args ...interface{}) {
	line(stderr, warningColor, warningSymbol, format, args)
}

// Info prints a cyan line with an arrow
func Info(format string, args ...interface{}) {
	line(stdout, infoColor, infoSymbol, format, args)
}

// Progress prints an indented step of a longer operation
func Progress(format string, args ...interface{}) {
	line(stdout, progressColor, "  "+infoSymbol, format, args)
}

// Println prints an uncolored line
func Println(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(stdout, format+"\n", args...)
}

// Printf prints uncolored text without a newline
func Printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(stdout, format, args...)
}

// Header prints a bold line
func Header(format string, args ...interface{}) {
	_, _ = headerColor.Fprintln(stdout, fmt.Sprintf(format, args...))
}

// Highlight colors a package name or path for emphasis
func Highlight(text string) string {
	return nameColor.Sprint(text)
}

// HighlightVersion colors a version or git ref
func HighlightVersion(version string) string {
	return versionColor.Sprint(version)
}
