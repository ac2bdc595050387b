//go:build !windows

package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestExecRunnerWorkDir(t *testing.T) {
	scriptDir := t.TempDir()
	script := writeScript(t, scriptDir, "pwd.sh", "pwd\necho \"$@\"\n")

	tests := map[string]struct {
		mode    WorkDir
		wantDir string
	}{
		"script directory":  {mode: ScriptDirectory, wantDir: scriptDir},
		"current directory": {mode: CurrentDirectory},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout bytes.Buffer
			r := &ExecRunner{Stdout: &stdout, Stderr: &stdout}

			require.NoError(t, r.Run(context.Background(), Sh, script, []string{"one", "two"}, tt.mode))

			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			require.Len(t, lines, 2)
			wantDir := tt.wantDir
			if wantDir == "" {
				wantDir, _ = os.Getwd()
			}
			gotDir, _ := filepath.EvalSymlinks(lines[0])
			wantDir, _ = filepath.EvalSymlinks(wantDir)
			assert.Equal(t, wantDir, gotDir)
			assert.Equal(t, "one two", lines[1])
		})
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	script := writeScript(t, t.TempDir(), "fail.sh", "exit 3\n")

	err := (&ExecRunner{}).Run(context.Background(), Sh, script, nil, ScriptDirectory)
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.ScriptFailed))
	assert.Contains(t, err.Error(), "status 3")
}
