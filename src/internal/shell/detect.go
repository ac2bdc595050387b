package shell

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Detect guesses the interpreter of a script from its shebang, or from a .cmd/.bat
// extension. Scripts without a recognizable shebang run with fallback.
func Detect(path string, fallback Interpreter) Interpreter {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cmd", ".bat":
		return Cmd
	}

	f, err := os.Open(path)
	if err != nil {
		return fallback
	}
	defer func() { _ = f.Close() }()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return fallback
	}
	return FromShebang(line, fallback)
}

// FromShebang maps a "#!" line to an interpreter
func FromShebang(line string, fallback Interpreter) Interpreter {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "#!") {
		return fallback
	}

	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return fallback
	}
	program := filepath.Base(fields[0])
	if program == "env" {
		// #!/usr/bin/env [-S] bash
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				program = filepath.Base(f)
				break
			}
		}
	}

	switch program {
	case "bash":
		return Bash
	case "zsh":
		return Zsh
	case "sh", "dash", "ash":
		return Sh
	default:
		return fallback
	}
}
