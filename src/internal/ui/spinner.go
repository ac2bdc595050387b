package ui

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress on stderr for operations with no measurable size,
// such as clones and setup scripts
type Spinner struct {
	spinner *spinner.Spinner
	message string
}

// NewSpinner creates a stopped spinner labelled with message
func NewSpinner(message string) *Spinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+message),
		spinner.WithWriter(os.Stderr),
	)
	return &Spinner{spinner: s, message: message}
}

// Start starts the spinner. In verbose mode it stays hidden so debug lines are readable.
func (s *Spinner) Start() {
	if IsVerbose() {
		Debug("%s", s.message)
		return
	}
	s.spinner.Start()
}

// Stop stops the spinner without printing anything
func (s *Spinner) Stop() {
	s.spinner.Stop()
}

// Success stops the spinner and prints a success line
func (s *Spinner) Success(message string) {
	s.spinner.Stop()
	Success("%s", message)
}

// Error stops the spinner and prints an error line
func (s *Spinner) Error(message string) {
	s.spinner.Stop()
	Error("%s", message)
}

// UpdateMessage changes the label while running
func (s *Spinner) UpdateMessage(message string) {
	s.message = message
	s.spinner.Suffix = " " + message
}

// WithSpinner runs fn behind a spinner. The spinner is cleared on failure so the
// caller can report the error.
func WithSpinner(message string, fn func() error) error {
	s := NewSpinner(message)
	s.Start()
	err := fn()
	s.Stop()
	return err
}
