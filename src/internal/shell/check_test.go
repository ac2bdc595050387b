package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSource(t *testing.T) {
	tests := map[string]struct {
		source  string
		interp  Interpreter
		wantErr bool
	}{
		"posix ok":             {source: "echo hi\nif [ -n \"$1\" ]; then echo \"$1\"; fi\n", interp: Sh},
		"unterminated if":      {source: "if true; then echo hi\n", interp: Sh, wantErr: true},
		"bash arrays":          {source: "arr=(a b c)\necho \"${arr[1]}\"\n", interp: Bash},
		"bash arrays in posix": {source: "arr=(a b c)\n", interp: Sh, wantErr: true},
		"zsh uses bash rules":  {source: "[[ -f x ]] && echo yes\n", interp: Zsh},
		"cmd unsupported":      {source: "echo hi", interp: Cmd, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := CheckSource("script.sh", tt.source, tt.interp)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckSyntax(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.sh")
	bad := filepath.Join(dir, "bad.sh")
	require.NoError(t, os.WriteFile(good, []byte("#!/bin/sh\necho ok\n"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte("#!/bin/sh\necho $(\n"), 0644))

	assert.NoError(t, CheckSyntax(good, Sh))
	assert.Error(t, CheckSyntax(bad, Sh))
	assert.Error(t, CheckSyntax(filepath.Join(dir, "missing.sh"), Sh))
}
