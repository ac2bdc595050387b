// Package shell describes the interpreters packages are written for and runs their scripts
package shell

import (
	"encoding/json"
	"fmt"
	"strings"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

// Interpreter is one of the closed set of supported shells
type Interpreter string

const (
	Sh   Interpreter = "sh"
	Bash Interpreter = "bash"
	Zsh  Interpreter = "zsh"
	Cmd  Interpreter = "cmd"
)

// All lists every supported interpreter
var All = []Interpreter{Sh, Bash, Zsh, Cmd}

// Parse converts a name into an Interpreter. Unknown names are an error, never a fallback.
func Parse(name string) (Interpreter, error) {
	candidate := Interpreter(strings.ToLower(strings.TrimSpace(name)))
	for _, interp := range All {
		if candidate == interp {
			return interp, nil
		}
	}
	return "", spmerrors.New(spmerrors.InvalidInterpreter, "unsupported interpreter %q", name).
		WithRemediation("Use one of: sh, bash, zsh, cmd")
}

// Name returns the canonical name
func (i Interpreter) Name() string {
	return string(i)
}

// String implements fmt.Stringer
func (i Interpreter) String() string {
	return string(i)
}

// Shebang returns the first line of scripts written for this interpreter
func (i Interpreter) Shebang() string {
	switch i {
	case Bash:
		return "#!/usr/bin/env bash"
	case Zsh:
		return "#!/usr/bin/env zsh"
	case Cmd:
		return "@echo off"
	default:
		return "#!/bin/sh"
	}
}

// Executable returns the program used to invoke a script
func (i Interpreter) Executable() string {
	if i == "" {
		return string(Sh)
	}
	return string(i)
}

// Command returns the argv that runs script with args
func (i Interpreter) Command(script string, args ...string) []string {
	argv := []string{i.Executable()}
	if i == Cmd {
		argv = append(argv, "/C")
	}
	argv = append(argv, script)
	return append(argv, args...)
}

// MarshalJSON writes the canonical name
func (i Interpreter) MarshalJSON() ([]byte, error) {
	if i == "" {
		return nil, fmt.Errorf("cannot marshal empty interpreter")
	}
	return json.Marshal(string(i))
}

// UnmarshalJSON accepts any casing of a supported name and rejects the rest
func (i *Interpreter) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("interpreter must be a string: %w", err)
	}
	parsed, err := Parse(name)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
