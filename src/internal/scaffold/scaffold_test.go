package scaffold

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
)

func TestCreateExecutable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.Mkdir(dir, 0755))

	m := manifest.New("demo", false, shell.Sh)
	require.NoError(t, Create(dir, m))

	for _, rel := range []string{"package.json", "main.sh", "install.sh", "uninstall.sh", filepath.Join("src", "std", "include.sh")} {
		assert.FileExists(t, filepath.Join(dir, rel))
	}
	assert.DirExists(t, filepath.Join(dir, "src"))
	assert.DirExists(t, filepath.Join(dir, "dependencies"))

	loaded, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "main.sh", loaded.Entrypoint)
	assert.Equal(t, m, loaded)

	main, err := os.ReadFile(filepath.Join(dir, "main.sh"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(main), "#!/bin/sh\n"))
	assert.Contains(t, string(main), `. "./src/std/include.sh"`)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir, "install.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestCreateLibrary(t *testing.T) {
	dir := t.TempDir()
	m := manifest.NewWithNamespace("strings", "acme", true, shell.Bash)
	require.NoError(t, Create(dir, m))

	assert.FileExists(t, filepath.Join(dir, "lib.sh"))
	assert.NoFileExists(t, filepath.Join(dir, "main.sh"))

	lib, err := os.ReadFile(filepath.Join(dir, "lib.sh"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(lib), "#!/usr/bin/env bash\n"))
	assert.Contains(t, string(lib), "greet()")

	loaded, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.True(t, loaded.IsLibrary)
	assert.Equal(t, "acme/strings", loaded.FullName())
}

func TestCreateGeneratedScriptsParse(t *testing.T) {
	for _, interp := range []shell.Interpreter{shell.Sh, shell.Bash, shell.Zsh} {
		t.Run(interp.Name(), func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, Create(dir, manifest.New("demo", false, interp)))

			for _, rel := range []string{"main.sh", "install.sh", "uninstall.sh", filepath.Join("src", "std", "include.sh")} {
				assert.NoError(t, shell.CheckSyntax(filepath.Join(dir, rel), interp), rel)
			}
		})
	}
}

func TestCreateRefusesToOverwrite(t *testing.T) {
	tests := map[string]string{
		"existing manifest":   "package.json",
		"existing entrypoint": "main.sh",
		"existing setup":      "install.sh",
	}

	for name, existing := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			original := []byte("keep me")
			require.NoError(t, os.WriteFile(filepath.Join(dir, existing), original, 0644))

			err := Create(dir, manifest.New("demo", false, shell.Sh))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "already exists")

			data, err := os.ReadFile(filepath.Join(dir, existing))
			require.NoError(t, err)
			assert.Equal(t, original, data)
		})
	}
}

func TestCreateRequiresDirectory(t *testing.T) {
	assert.Error(t, Create(filepath.Join(t.TempDir(), "missing"), manifest.New("demo", false, shell.Sh)))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, Create(file, manifest.New("demo", false, shell.Sh)))
}
