package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpm/spm/src/internal/config"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/testutil"
)

// testEnvironment points spm at a fresh root and swaps in a fake runner
func testEnvironment(t *testing.T) (*environment, *testutil.FakeRunner) {
	t.Helper()

	t.Setenv("SPM_ROOT", t.TempDir())
	config.ResetPathsCache()
	t.Cleanup(config.ResetPathsCache)

	runner := &testutil.FakeRunner{}
	original := newRunner
	newRunner = func() shell.Runner { return runner }
	t.Cleanup(func() { newRunner = original })

	env, err := loadEnvironment()
	require.NoError(t, err)
	require.NoError(t, env.paths.EnsureDirectories())
	return env, runner
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0755))
	return path
}

func TestResolveRunTarget_File(t *testing.T) {
	env, _ := testEnvironment(t)

	tests := []struct {
		name        string
		body        string
		interpreter string
		want        shell.Interpreter
	}{
		{name: "shebang", body: "#!/usr/bin/env bash\necho hi\n", want: shell.Bash},
		{name: "no shebang uses default", body: "echo hi\n", want: shell.Sh},
		{name: "flag wins", body: "#!/bin/bash\necho hi\n", interpreter: "zsh", want: shell.Zsh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runInterpreter = tt.interpreter
			defer func() { runInterpreter = "" }()

			script := writeScript(t, tt.body)
			interp, path, err := resolveRunTarget(env, script)
			require.NoError(t, err)
			assert.Equal(t, tt.want, interp)
			assert.Equal(t, script, path)
		})
	}
}

func TestResolveRunTarget_PackageDirectory(t *testing.T) {
	env, _ := testEnvironment(t)
	dir := testutil.WritePackage(t, filepath.Join(t.TempDir(), "greeter"), testutil.Package{Name: "greeter", Interpreter: "bash"})

	interp, script, err := resolveRunTarget(env, dir)
	require.NoError(t, err)
	assert.Equal(t, shell.Bash, interp)
	assert.Equal(t, filepath.Join(dir, "main.sh"), script)
}

func TestResolveRunTarget_Installed(t *testing.T) {
	env, _ := testEnvironment(t)
	dir := testutil.WritePackage(t, env.paths.PackageDir("acme", "web-server"), testutil.Package{Name: "web-server", Namespace: "acme"})

	interp, script, err := resolveRunTarget(env, "web")
	require.NoError(t, err)
	assert.Equal(t, shell.Sh, interp)
	assert.Equal(t, filepath.Join(dir, "main.sh"), script)
}

func TestResolveRunTarget_NotFound(t *testing.T) {
	env, _ := testEnvironment(t)
	testutil.WritePackage(t, env.paths.PackageDir("acme", "database"), testutil.Package{Name: "database", Namespace: "acme"})

	_, _, err := resolveRunTarget(env, "network")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.PackageNotFound), "error: %v", err)
}

func TestPickInstalled_SingleMatch(t *testing.T) {
	env, _ := testEnvironment(t)
	testutil.WritePackage(t, env.paths.PackageDir("acme", "database"), testutil.Package{Name: "database", Namespace: "acme"})
	testutil.WritePackage(t, env.paths.PackageDir("acme", "web-server"), testutil.Package{Name: "web-server", Namespace: "acme"})

	pkg, err := pickInstalled(env.store(), "server")
	require.NoError(t, err)
	assert.Equal(t, "acme/web-server", pkg.FullName())
}

func TestCreatePackage(t *testing.T) {
	testEnvironment(t)

	createLibrary, createNamespace, createInterpreter = true, "acme", "bash"
	defer func() { createLibrary, createNamespace, createInterpreter = false, "", "" }()

	dir := t.TempDir()
	require.NoError(t, createPackage(dir, "strings"))

	m, err := manifest.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "acme/strings", m.FullName())
	assert.True(t, m.IsLibrary)
	assert.Equal(t, shell.Bash, m.Interpreter)

	assert.Error(t, createPackage(dir, "strings"), "existing package.json must not be overwritten")
}

func TestCreatePackage_InvalidInterpreter(t *testing.T) {
	testEnvironment(t)

	createInterpreter = "fish"
	defer func() { createInterpreter = "" }()

	err := createPackage(t.TempDir(), "greeter")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.InvalidInterpreter))
}

func TestScriptsToCheck(t *testing.T) {
	dir := testutil.WritePackage(t, filepath.Join(t.TempDir(), "greeter"), testutil.Package{Name: "greeter"})
	testutil.WritePackage(t, filepath.Join(dir, "dependencies", "acme", "strings"), testutil.Package{Name: "strings", Library: true})

	files, err := scriptsToCheck(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.ElementsMatch(t, []string{"main.sh", "install.sh", "uninstall.sh"}, names)

	single, err := scriptsToCheck(filepath.Join(dir, "main.sh"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "main.sh")}, single)
}

func TestUsesSpinner(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"acme/greeter", true},
		{"https://github.com/acme/greeter.git", true},
		{"./greeter", true},
		{"https://example.com/greeter.tar.gz", false},
		{"http://example.com/greeter.zip#sha256=abc", false},
		{"./greeter.tar.gz", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, usesSpinner(tt.expr))
		})
	}
}
