// Package local edits the dependencies of a package on disk: adding, removing and
// refreshing the libraries vendored under its dependencies/ directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellpm/spm/src/internal/config"
	"github.com/shellpm/spm/src/internal/constants"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/lock"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/ui"
)

// Operations performs dependency edits on packages
type Operations struct {
	paths           *config.Paths
	fetcher         manifest.Fetcher
	continueOnError bool
}

// Option configures Operations
type Option func(*Operations)

// WithContinueOnError makes a refresh keep going past failing dependencies, persisting
// the ones that succeeded and returning every failure
func WithContinueOnError(v bool) Option {
	return func(o *Operations) { o.continueOnError = v }
}

// New returns Operations using paths for its lock files and fetcher for remote dependencies
func New(paths *config.Paths, fetcher manifest.Fetcher, opts ...Option) *Operations {
	o := &Operations{paths: paths, fetcher: fetcher}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Operations) lock(packageRoot string) (*lock.Lock, error) {
	return lock.TryAcquire(o.paths.Locks, packageRoot)
}

// AddDependency vendors the library at resolvedPath into packageRoot under the slot
// derived from url and records it in the manifest. An occupied slot is an error; use
// RefreshDependencies or remove it first.
func (o *Operations) AddDependency(ctx context.Context, packageRoot, resolvedPath, url, version string) (manifest.Dependency, error) {
	l, err := o.lock(packageRoot)
	if err != nil {
		return manifest.Dependency{}, err
	}
	defer func() { _ = l.Release() }()

	dep, err := manifest.NewDependency(url, version)
	if err != nil {
		return manifest.Dependency{}, err
	}

	m, err := manifest.Read(packageRoot)
	if err != nil {
		return manifest.Dependency{}, err
	}

	if !fsutil.IsDir(filepath.Join(packageRoot, constants.DependenciesDirName)) {
		return manifest.Dependency{}, spmerrors.New(spmerrors.BrokenPackage,
			"%s has no %s directory", packageRoot, constants.DependenciesDirName).
			WithRemediation("Create packages with 'spm new' or 'spm init'")
	}

	slot := dep.SlotDir(packageRoot)
	if fsutil.Exists(slot) {
		return manifest.Dependency{}, spmerrors.New(spmerrors.DependencySlotExists,
			"dependency %s already exists in %s", dep.FullName(), packageRoot).
			WithRemediation(
				"Run 'spm refresh' to update it",
				fmt.Sprintf("Or 'spm remove %s' before adding it again", dep.FullName()),
			)
	}

	if _, err := manifest.RequireLibrary(resolvedPath); err != nil {
		return manifest.Dependency{}, err
	}

	ui.Logger().Debug("adding dependency", "dependency", dep.FullName(), "from", resolvedPath, "slot", slot)
	if err := fsutil.CopyDir(resolvedPath, slot); err != nil {
		_ = os.RemoveAll(slot)
		return manifest.Dependency{}, fmt.Errorf("failed to copy %s: %w", resolvedPath, err)
	}

	m.Dependencies.Add(dep)
	if err := m.Save(packageRoot); err != nil {
		_ = os.RemoveAll(slot)
		return manifest.Dependency{}, err
	}
	return dep, nil
}

// RemoveDependency drops the dependency in slot namespace/name from the manifest and
// deletes its directory. A slot the manifest does not list is an error and leaves the
// manifest untouched; a missing directory is not.
func (o *Operations) RemoveDependency(ctx context.Context, packageRoot, name, namespace string) (manifest.Dependency, error) {
	l, err := o.lock(packageRoot)
	if err != nil {
		return manifest.Dependency{}, err
	}
	defer func() { _ = l.Release() }()

	m, err := manifest.Read(packageRoot)
	if err != nil {
		return manifest.Dependency{}, err
	}

	removed, ok := m.Dependencies.Remove(name, namespace)
	if !ok {
		return manifest.Dependency{}, spmerrors.New(spmerrors.DependencyNotFound,
			"%s/%s is not a dependency of %s", namespace, name, m.FullName())
	}

	if err := m.Save(packageRoot); err != nil {
		return manifest.Dependency{}, err
	}

	slot := removed.SlotDir(packageRoot)
	if err := os.RemoveAll(slot); err != nil {
		return removed, fmt.Errorf("failed to remove %s: %w", slot, err)
	}
	return removed, nil
}

// RefreshDependencies re-materializes every dependency of packageRoot, at
// versionOverride when given, and persists the manifest once. It returns the full
// names of the refreshed dependencies.
//
// By default the first failure aborts the refresh and the manifest is not written.
// With WithContinueOnError the remaining dependencies are still refreshed, the
// successes are persisted, and all failures are returned joined.
func (o *Operations) RefreshDependencies(ctx context.Context, packageRoot, versionOverride string) ([]string, error) {
	l, err := o.lock(packageRoot)
	if err != nil {
		return nil, err
	}
	defer func() { _ = l.Release() }()

	m, err := manifest.Read(packageRoot)
	if err != nil {
		return nil, err
	}

	refreshed := []string{}
	var failures []error
	for i := 0; i < m.Dependencies.Len(); i++ {
		dep := m.Dependencies.Get(i)
		if err := dep.Update(ctx, o.fetcher, packageRoot, versionOverride); err != nil {
			err = fmt.Errorf("failed to refresh %s: %w", dep.FullName(), err)
			if !o.continueOnError {
				return nil, err
			}
			ui.Warning("%v", err)
			failures = append(failures, err)
			continue
		}
		ui.Debug("Refreshed %s at %s", dep.FullName(), dep.Version)
		refreshed = append(refreshed, dep.FullName())
	}

	if err := m.Save(packageRoot); err != nil {
		return nil, err
	}
	return refreshed, errors.Join(failures...)
}
