package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/ui"
)

// WorkDir selects the working directory a script runs in
type WorkDir int

const (
	// ScriptDirectory runs the script from the directory containing it
	ScriptDirectory WorkDir = iota
	// CurrentDirectory runs the script from the caller's working directory
	CurrentDirectory
)

// Runner executes scripts and waits for them to finish
type Runner interface {
	Run(ctx context.Context, interp Interpreter, script string, args []string, mode WorkDir) error
}

// ExecRunner runs scripts as child processes
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the process's standard streams
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes script with interp. A non-zero exit status is a ScriptFailed error.
func (r *ExecRunner) Run(ctx context.Context, interp Interpreter, script string, args []string, mode WorkDir) error {
	absScript, err := filepath.Abs(script)
	if err != nil {
		return err
	}

	argv := interp.Command(absScript, args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if mode == ScriptDirectory {
		cmd.Dir = filepath.Dir(absScript)
	}

	ui.Logger().Debug("running script", "interpreter", interp, "script", absScript, "dir", cmd.Dir)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return spmerrors.Wrap(err, spmerrors.ScriptFailed, "%s exited with status %d", filepath.Base(absScript), exitErr.ExitCode())
		}
		return spmerrors.Wrap(err, spmerrors.ScriptFailed, "failed to start %s", filepath.Base(absScript))
	}
	return nil
}
