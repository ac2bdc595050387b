// Package testutil builds package trees, git repositories and fake collaborators for tests
package testutil

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/shell"
)

// Package describes a package tree to write to disk
type Package struct {
	Name         string
	Namespace    string // empty writes a null namespace
	Library      bool
	Register     bool // install.register_to_environment_tool
	Version      string
	Interpreter  string
	Dependencies []Dependency
	// SetupScript and UninstallScript are script bodies; defaults exit 0
	SetupScript     string
	UninstallScript string
	// Omit lists files or directories to leave out, producing a broken package
	Omit []string
}

// Dependency is a manifest dependency entry
type Dependency struct {
	URL     string `json:"url"`
	Version string `json:"version"`
}

// WritePackage writes a well-formed package into dir and returns dir
func WritePackage(t testing.TB, dir string, p Package) string {
	t.Helper()

	entrypoint := constants.MainEntrypoint
	if p.Library {
		entrypoint = constants.LibraryEntrypoint
	}
	if p.Version == "" {
		p.Version = constants.DefaultVersion
	}
	if p.Interpreter == "" {
		p.Interpreter = "sh"
	}
	if p.SetupScript == "" {
		p.SetupScript = "exit 0\n"
	}
	if p.UninstallScript == "" {
		p.UninstallScript = "exit 0\n"
	}
	deps := p.Dependencies
	if deps == nil {
		deps = []Dependency{}
	}

	var namespace interface{}
	if p.Namespace != "" {
		namespace = p.Namespace
	}

	doc := map[string]interface{}{
		"name":        p.Name,
		"description": "test package " + p.Name,
		"version":     p.Version,
		"namespace":   namespace,
		"interpreter": p.Interpreter,
		"entrypoint":  entrypoint,
		"install": map[string]interface{}{
			"setup_script":                 constants.SetupScriptName,
			"register_to_environment_tool": p.Register,
		},
		"uninstall":    constants.UninstallScriptName,
		"is_library":   p.Library,
		"dependencies": deps,
	}

	omitted := make(map[string]bool, len(p.Omit))
	for _, o := range p.Omit {
		omitted[o] = true
	}

	mkdir := func(rel string) {
		if omitted[rel] {
			return
		}
		if err := os.MkdirAll(filepath.Join(dir, rel), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", rel, err)
		}
	}
	write := func(rel, body string, mode os.FileMode) {
		if omitted[rel] {
			return
		}
		if err := os.WriteFile(filepath.Join(dir, rel), []byte(body), mode); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}

	mkdir(".")
	mkdir(constants.SourceDirName)
	mkdir(constants.DependenciesDirName)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode manifest: %v", err)
	}
	write(constants.ManifestFileName, string(data)+"\n", 0644)
	write(entrypoint, "#!/bin/sh\necho \""+p.Name+"\"\n", 0755)
	write(constants.SetupScriptName, "#!/bin/sh\n"+p.SetupScript, 0755)
	write(constants.UninstallScriptName, "#!/bin/sh\n"+p.UninstallScript, 0755)

	return dir
}

// RunCall records one script invocation
type RunCall struct {
	Interpreter shell.Interpreter
	Script      string
	Args        []string
	Mode        shell.WorkDir
}

// FakeRunner records script invocations instead of executing them
type FakeRunner struct {
	mu    sync.Mutex
	Calls []RunCall
	// Err, when set, is returned from every Run
	Err error
}

// Run implements shell.Runner
func (f *FakeRunner) Run(_ context.Context, interp shell.Interpreter, script string, args []string, mode shell.WorkDir) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, RunCall{Interpreter: interp, Script: script, Args: args, Mode: mode})
	return f.Err
}

// Scripts returns the base names of the scripts run so far
func (f *FakeRunner) Scripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		names = append(names, filepath.Base(c.Script))
	}
	return names
}
