// Package store manages the packages installed under the spm root: scanning,
// lookup, keyword search, install and uninstall.
package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/shellpm/spm/src/internal/config"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/shim"
	"github.com/shellpm/spm/src/internal/ui"
)

// PackageMetadata is an installed package together with the absolute paths of its parts
type PackageMetadata struct {
	Manifest        *manifest.Manifest
	Dir             string
	Entrypoint      string
	SetupScript     string
	UninstallScript string
}

// FullName returns the package's "namespace/name"
func (p PackageMetadata) FullName() string {
	return p.Manifest.FullName()
}

func newMetadata(dir string, m *manifest.Manifest) PackageMetadata {
	return PackageMetadata{
		Manifest:        m,
		Dir:             dir,
		Entrypoint:      filepath.Join(dir, m.Entrypoint),
		SetupScript:     filepath.Join(dir, m.Install.SetupScript),
		UninstallScript: filepath.Join(dir, m.Uninstall),
	}
}

// Store operates on one spm root
type Store struct {
	paths  *config.Paths
	runner shell.Runner
	shims  *shim.Manager
	strict bool
}

// Option configures a Store
type Option func(*Store)

// WithStrictLookup makes ambiguous bare-name lookups fail instead of picking the first match
func WithStrictLookup(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// WithShims overrides the shim manager (defaults to the root's bin directory)
func WithShims(m *shim.Manager) Option {
	return func(s *Store) { s.shims = m }
}

// New returns a store rooted at paths that runs scripts with runner
func New(paths *config.Paths, runner shell.Runner, opts ...Option) *Store {
	s := &Store{
		paths:  paths,
		runner: runner,
		shims:  shim.NewManager(paths.Bin),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the layout the store operates on
func (s *Store) Paths() *config.Paths {
	return s.paths
}

// ScanInstalled lists installed packages. A directory directly under the packages
// root holding a manifest is a package; any other directory is a namespace whose
// child package directories are included. Deeper levels are not searched.
func (s *Store) ScanInstalled() ([]PackageMetadata, error) {
	entries, err := os.ReadDir(s.paths.Packages)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, spmerrors.Wrap(err, spmerrors.InstallRootMissing, "packages directory %s does not exist", s.paths.Packages).
				WithRemediation("Run 'spm setup' or install a package first")
		}
		return nil, spmerrors.Wrap(err, spmerrors.InstallRootMissing, "cannot read %s", s.paths.Packages)
	}

	var packages []PackageMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.paths.Packages, entry.Name())

		if manifest.IsPackageDir(dir) {
			packages = s.appendPackage(packages, dir)
			continue
		}

		children, err := os.ReadDir(dir)
		if err != nil {
			ui.Debug("skipping unreadable namespace %s: %v", dir, err)
			continue
		}
		for _, child := range children {
			childDir := filepath.Join(dir, child.Name())
			if child.IsDir() && manifest.IsPackageDir(childDir) {
				packages = s.appendPackage(packages, childDir)
			}
		}
	}

	return packages, nil
}

func (s *Store) appendPackage(packages []PackageMetadata, dir string) []PackageMetadata {
	m, err := manifest.Read(dir)
	if err != nil {
		ui.Warning("Skipping %s: %v", dir, err)
		return packages
	}
	return append(packages, newMetadata(dir, m))
}
