// Package shim writes small wrapper scripts into spm's bin directory so packages that
// register themselves with the environment can be run by name from PATH.
package shim

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/shell"
)

// Target is what a shim launches
type Target struct {
	Name        string // shim name, usually the package name
	Package     string // owning package's full name
	Interpreter shell.Interpreter
	Entrypoint  string // absolute path
}

// Manager handles shim creation and removal in a bin directory
type Manager struct {
	binDir string
}

// NewManager creates a manager for binDir
func NewManager(binDir string) *Manager {
	return &Manager{binDir: binDir}
}

// Path returns the shim file for name
func (m *Manager) Path(name string) string {
	if runtime.GOOS == constants.OSWindows {
		name += constants.ExtCmd
	}
	return filepath.Join(m.binDir, name)
}

// CreateShim writes the wrapper for t and records its owner
func (m *Manager) CreateShim(t Target) error {
	if t.Name == "" || strings.ContainsAny(t.Name, `/\`) {
		return fmt.Errorf("invalid shim name %q", t.Name)
	}
	if err := os.MkdirAll(m.binDir, 0755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	shimMap, err := m.LoadShimMap()
	if err != nil {
		return err
	}
	if owner, ok := shimMap[t.Name]; ok && owner != t.Package {
		return fmt.Errorf("shim %s already belongs to %s", t.Name, owner)
	}

	if err := os.WriteFile(m.Path(t.Name), []byte(render(t)), 0755); err != nil {
		return fmt.Errorf("failed to create shim %s: %w", t.Name, err)
	}
	// Make it executable regardless of umask
	if runtime.GOOS != constants.OSWindows {
		if err := os.Chmod(m.Path(t.Name), 0755); err != nil {
			return fmt.Errorf("failed to make shim executable: %w", err)
		}
	}

	shimMap[t.Name] = t.Package
	return m.SaveShimMap(shimMap)
}

// RemoveShim removes a shim and forgets its owner
func (m *Manager) RemoveShim(name string) error {
	if err := os.Remove(m.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove shim %s: %w", name, err)
	}

	shimMap, err := m.LoadShimMap()
	if err != nil {
		return err
	}
	if _, ok := shimMap[name]; !ok {
		return nil
	}
	delete(shimMap, name)
	return m.SaveShimMap(shimMap)
}

// RemovePackageShims removes every shim owned by the package
func (m *Manager) RemovePackageShims(pkg string) error {
	shimMap, err := m.LoadShimMap()
	if err != nil {
		return err
	}
	for name, owner := range shimMap {
		if owner == pkg {
			if err := m.RemoveShim(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListShims returns all existing shims, sorted
func (m *Manager) ListShims() ([]string, error) {
	entries, err := os.ReadDir(m.binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	shims := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == shimMapFileName {
			continue
		}
		name := entry.Name()
		if runtime.GOOS == constants.OSWindows {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		shims = append(shims, name)
	}
	sort.Strings(shims)
	return shims, nil
}

// Rehash regenerates the bin directory from scratch for the given targets
func (m *Manager) Rehash(targets []Target) error {
	existing, err := m.ListShims()
	if err != nil {
		return err
	}
	for _, name := range existing {
		if err := os.Remove(m.Path(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove shim %s: %w", name, err)
		}
	}
	if err := m.SaveShimMap(ShimMap{}); err != nil {
		return err
	}

	for _, t := range targets {
		if err := m.CreateShim(t); err != nil {
			return err
		}
	}
	return nil
}

func render(t Target) string {
	argv := t.Interpreter.Command(t.Entrypoint)
	if runtime.GOOS == constants.OSWindows {
		quoted := make([]string, len(argv))
		for i, a := range argv {
			quoted[i] = `"` + a + `"`
		}
		return fmt.Sprintf("@echo off\r\nrem spm shim for %s\r\n%s %%*\r\n", t.Package, strings.Join(quoted, " "))
	}

	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return fmt.Sprintf("#!/bin/sh\n# spm shim for %s\nexec %s \"$@\"\n", t.Package, strings.Join(quoted, " "))
}
