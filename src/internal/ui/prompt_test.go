package ui

import (
	"os"
	"strings"
	"testing"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		count   int
		want    int
		wantErr bool
	}{
		{name: "first", answer: "1\n", count: 3, want: 0},
		{name: "last", answer: " 3 ", count: 3, want: 2},
		{name: "zero", answer: "0", count: 3, wantErr: true},
		{name: "too large", answer: "4", count: 3, wantErr: true},
		{name: "not a number", answer: "web", count: 3, wantErr: true},
		{name: "empty", answer: "", count: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelection(tt.answer, tt.count)
			if tt.wantErr {
				if !spmerrors.Is(err, spmerrors.AmbiguousSelection) {
					t.Errorf("parseSelection(%q) error = %v, want AmbiguousSelection", tt.answer, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSelection(%q) unexpected error: %v", tt.answer, err)
			}
			if got != tt.want {
				t.Errorf("parseSelection(%q) = %d, want %d", tt.answer, got, tt.want)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		answer     string
		defaultYes bool
		want       bool
	}{
		{name: "empty uses default yes", answer: "\n", defaultYes: true, want: true},
		{name: "empty uses default no", answer: "\n", defaultYes: false, want: false},
		{name: "y", answer: "y\n", want: true},
		{name: "YES", answer: "YES\n", want: true},
		{name: "no", answer: "no\n", defaultYes: true, want: false},
	}

	defer SetInput(os.Stdin)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetInput(strings.NewReader(tt.answer))
			if got := Confirm("Proceed?", tt.defaultYes); got != tt.want {
				t.Errorf("Confirm() with %q = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestPromptsSharePipedInput(t *testing.T) {
	defer SetInput(os.Stdin)
	SetInput(strings.NewReader("n\n2\ny\n"))

	if Confirm("Uninstall acme/greeter?", true) {
		t.Error("first answer should decline")
	}
	choice, err := Select("Several packages match web:", []string{"acme/web", "user/web-server"})
	if err != nil {
		t.Fatalf("Select() unexpected error: %v", err)
	}
	if choice != 1 {
		t.Errorf("Select() = %d, want 1", choice)
	}
	if !Confirm("Proceed?", false) {
		t.Error("third answer should accept")
	}
}

func TestVerboseMode(t *testing.T) {
	defer SetVerbose(false)

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("IsVerbose() = false after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("IsVerbose() = true after SetVerbose(false)")
	}
}
