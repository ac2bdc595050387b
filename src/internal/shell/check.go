package shell

import (
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CheckSyntax parses the script at path with the grammar of interp
func CheckSyntax(path string, interp Interpreter) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	parser, err := parserFor(interp)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(f, path); err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	return nil
}

// CheckSource parses script source held in memory
func CheckSource(name, source string, interp Interpreter) error {
	parser, err := parserFor(interp)
	if err != nil {
		return err
	}
	if _, err := parser.Parse(strings.NewReader(source), name); err != nil {
		return fmt.Errorf("syntax error: %w", err)
	}
	return nil
}

func parserFor(interp Interpreter) (*syntax.Parser, error) {
	switch interp {
	case Sh, "":
		return syntax.NewParser(syntax.Variant(syntax.LangPOSIX)), nil
	case Bash, Zsh:
		// zsh has no dedicated grammar here; bash is the closest superset
		return syntax.NewParser(syntax.Variant(syntax.LangBash)), nil
	default:
		return nil, fmt.Errorf("syntax checking is not supported for %s scripts", interp)
	}
}
