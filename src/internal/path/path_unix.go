//go:build !windows

package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/ui"
)

// DetectShell returns the base name of $SHELL, or "" when unset
func DetectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return ""
}

// ProfileFile returns the startup file under home that a PATH export for shell belongs in
func ProfileFile(shell, home string) string {
	switch shell {
	case constants.ShellBash:
		if bashrc := filepath.Join(home, ".bashrc"); fsutil.Exists(bashrc) {
			return bashrc
		}
		return filepath.Join(home, ".bash_profile")
	case constants.ShellZsh:
		return filepath.Join(home, ".zshrc")
	case constants.ShellFish:
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".profile")
	}
}

// AddToPath appends an export of binDir to the user's shell profile once they confirm
func AddToPath(binDir string) error {
	if IsInPath(binDir) {
		return nil
	}

	shell := DetectShell()
	if shell == "" {
		return fmt.Errorf("$SHELL is not set; add %s to your PATH manually", binDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot locate your home directory: %w", err)
	}

	profile := ProfileFile(shell, home)
	if containsPathModification(profile, binDir) {
		ui.Warning("%s already adds %s to PATH; restart your terminal or run: source %s", profile, binDir, profile)
		return nil
	}

	line := ExportLine(shell, binDir)
	ui.Info("Registered packages are launched from %s", ui.Highlight(binDir))
	ui.Info("Appending to %s: %s", ui.Highlight(profile), strings.TrimSpace(line))
	if !ui.Confirm("Proceed?", true) {
		ui.Warning("PATH not modified. Add this line to %s yourself:", profile)
		ui.Println("  %s", strings.TrimSpace(line))
		return nil
	}

	if err := appendLine(profile, line); err != nil {
		return err
	}
	ui.Success("Added %s to PATH in %s", binDir, profile)
	return nil
}

func appendLine(file, line string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(file), err)
	}
	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}
