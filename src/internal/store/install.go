package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/lock"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/shim"
	"github.com/shellpm/spm/src/internal/ui"
)

// Destination returns where the package at path would be installed
func (s *Store) Destination(path string, m *manifest.Manifest) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return s.paths.PackageDir(m.Namespace, filepath.Base(abs)), nil
}

// Install copies (or moves) the package at path into the install root and runs its
// setup script from the script's directory. An occupied destination is an error unless
// force is set, in which case the existing install is replaced.
func (s *Store) Install(ctx context.Context, path string, move, force bool) (PackageMetadata, error) {
	m, err := manifest.Read(path)
	if err != nil {
		return PackageMetadata{}, err
	}
	src := filepath.Dir(manifest.Path(path))

	if !fsutil.Exists(filepath.Join(src, m.Install.SetupScript)) {
		return PackageMetadata{}, spmerrors.New(spmerrors.SetupScriptMissing,
			"setup script %s not found in %s", m.Install.SetupScript, src)
	}
	if err := m.Verify(src); err != nil {
		return PackageMetadata{}, err
	}

	dest, err := s.Destination(src, m)
	if err != nil {
		return PackageMetadata{}, err
	}
	if fsutil.Overlaps(src, dest) {
		return PackageMetadata{}, spmerrors.New(spmerrors.InvalidSource,
			"cannot install %s from %s: the source overlaps the install location %s", m.FullName(), src, dest).
			WithRemediation("Install from a copy of the package outside " + s.paths.Packages)
	}

	l, err := lock.TryAcquire(s.paths.Locks, dest)
	if err != nil {
		return PackageMetadata{}, err
	}
	defer func() { _ = l.Release() }()

	if fsutil.Exists(dest) {
		if !force {
			return PackageMetadata{}, spmerrors.New(spmerrors.AlreadyInstalled,
				"%s is already installed at %s", m.FullName(), dest).
				WithRemediation("Use --force to replace the installed copy")
		}
		ui.Debug("Replacing existing install at %s", dest)
		if err := os.RemoveAll(dest); err != nil {
			return PackageMetadata{}, fmt.Errorf("failed to remove existing install: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return PackageMetadata{}, fmt.Errorf("failed to create install directory: %w", err)
	}

	if move {
		ui.Debug("Moving %s to %s", src, dest)
		err = fsutil.Move(src, dest)
	} else {
		ui.Debug("Copying %s to %s", src, dest)
		err = fsutil.CopyDir(src, dest)
	}
	if err != nil {
		return PackageMetadata{}, fmt.Errorf("failed to install %s: %w", m.FullName(), err)
	}

	pkg := newMetadata(dest, m)

	// Files stay in place when the setup script fails so it can be fixed and rerun
	if err := s.runner.Run(ctx, m.Interpreter, pkg.SetupScript, nil, shell.ScriptDirectory); err != nil {
		return pkg, err
	}

	if m.Install.RegisterToEnvironmentTool {
		if err := s.shims.CreateShim(shimTarget(pkg)); err != nil {
			return pkg, fmt.Errorf("failed to register %s: %w", m.FullName(), err)
		}
	}

	return pkg, nil
}

// Uninstall runs the package's uninstall script and then deletes the package. Nothing is
// deleted when the uninstall script is missing.
func (s *Store) Uninstall(ctx context.Context, name string) (PackageMetadata, error) {
	pkg, err := s.FindByName(name)
	if err != nil {
		return PackageMetadata{}, err
	}
	return pkg, s.UninstallPackage(ctx, pkg)
}

// UninstallPackage uninstalls an already resolved package
func (s *Store) UninstallPackage(ctx context.Context, pkg PackageMetadata) error {
	l, err := lock.TryAcquire(s.paths.Locks, pkg.Dir)
	if err != nil {
		return err
	}
	defer func() { _ = l.Release() }()

	if !fsutil.Exists(pkg.UninstallScript) {
		return spmerrors.New(spmerrors.UninstallScriptMissing,
			"uninstall script %s not found in %s", pkg.Manifest.Uninstall, pkg.Dir).
			WithRemediation("Restore the script or remove " + pkg.Dir + " by hand")
	}

	if err := s.runner.Run(ctx, pkg.Manifest.Interpreter, pkg.UninstallScript, nil, shell.ScriptDirectory); err != nil {
		return err
	}

	if err := os.RemoveAll(pkg.Dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", pkg.Dir, err)
	}

	if err := s.shims.RemovePackageShims(pkg.FullName()); err != nil {
		ui.Warning("Failed to remove shims for %s: %v", pkg.FullName(), err)
	}
	return nil
}

// Rehash rebuilds the bin shims of every installed package that registers itself
func (s *Store) Rehash() error {
	packages, err := s.ScanInstalled()
	if err != nil {
		return err
	}
	var targets []shim.Target
	for _, p := range packages {
		if p.Manifest.Install.RegisterToEnvironmentTool {
			targets = append(targets, shimTarget(p))
		}
	}
	return s.shims.Rehash(targets)
}

func shimTarget(p PackageMetadata) shim.Target {
	return shim.Target{
		Name:        p.Manifest.Name,
		Package:     p.FullName(),
		Interpreter: p.Manifest.Interpreter,
		Entrypoint:  p.Entrypoint,
	}
}
