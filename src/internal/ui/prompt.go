package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

// input is shared by every prompt so piped answers are consumed one line per prompt
var input = bufio.NewReader(os.Stdin)

// SetInput makes prompts read answers from r
func SetInput(r io.Reader) {
	input = bufio.NewReader(r)
}

// Confirm asks a yes/no question. An empty answer accepts the default.
func Confirm(question string, defaultYes bool) bool {
	hint := "[Y/n]"
	if !defaultYes {
		hint = "[y/N]"
	}
	fmt.Printf("\n%s %s: ", question, hint)

	response := strings.ToLower(strings.TrimSpace(readLine()))
	switch response {
	case "":
		return defaultYes
	case constants.ResponseY, constants.ResponseYes:
		return true
	default:
		return false
	}
}

// Select prints numbered options and returns the zero-based index of the choice.
// Anything other than a number in range is an AmbiguousSelection error.
func Select(title string, options []string) (int, error) {
	Header("%s", title)
	for i, option := range options {
		fmt.Printf("  %s %s\n", Highlight(strconv.Itoa(i+1)+")"), option)
	}
	fmt.Printf("\nSelect [1-%d]: ", len(options))

	return parseSelection(readLine(), len(options))
}

func parseSelection(answer string, count int) (int, error) {
	answer = strings.TrimSpace(answer)
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > count {
		return -1, spmerrors.New(spmerrors.AmbiguousSelection, "Invalid selection %q", answer).
			WithRemediation(fmt.Sprintf("Enter a number between 1 and %d", count))
	}
	return n - 1, nil
}

func readLine() string {
	line, _ := input.ReadString('\n')
	return line
}
