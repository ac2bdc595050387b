package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg   = color.New(color.FgRed).SprintFunc()
	fixLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	bullet     = color.New(color.FgGreen).SprintFunc()
	kindFmt    = color.New(color.FgYellow).SprintFunc()
)

// Format renders err for the terminal, including remediation steps of typed errors
func Format(err error) string {
	return format(err, true)
}

// FormatPlain renders err without colors
func FormatPlain(err error) string {
	return format(err, false)
}

// Print writes the formatted error to stderr
func Print(err error) {
	Fprint(os.Stderr, err)
}

// Fprint writes the formatted error to w
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(w, Format(err))
}

func format(err error, useColors bool) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	var typed *Error
	isTyped := stderrors.As(err, &typed)

	label := "Error"
	if useColors {
		label = errorLabel(label)
	}
	sb.WriteString(label)

	if isTyped {
		name := typed.Kind.String()
		if useColors {
			name = kindFmt(name)
		}
		sb.WriteString(" [")
		sb.WriteString(name)
		sb.WriteString("]")
	}

	message := err.Error()
	if useColors {
		message = errorMsg(message)
	}
	sb.WriteString(": ")
	sb.WriteString(message)
	sb.WriteString("\n")

	if isTyped && len(typed.Remediation) > 0 {
		sb.WriteString("\n")
		if useColors {
			sb.WriteString(fixLabel("To fix this:"))
		} else {
			sb.WriteString("To fix this:")
		}
		sb.WriteString("\n")
		for _, step := range typed.Remediation {
			sb.WriteString("  ")
			if useColors {
				sb.WriteString(bullet("•"))
			} else {
				sb.WriteString("•")
			}
			sb.WriteString(" ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
