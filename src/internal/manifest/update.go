package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shellpm/spm/src/internal/constants"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/ui"
)

// Fetcher materializes a git repository at a version into dest
type Fetcher interface {
	FetchWithVersion(ctx context.Context, repoURL, version, dest string) (string, error)
}

// Update re-materializes the dependency inside packageRoot. The slot directory must
// already exist; it is deleted and recreated from the dependency's url at
// versionOverride (or the stored version when empty). The result must be a library,
// otherwise the slot is removed and NotALibrary is returned. On success Version is
// updated; persisting the manifest is up to the caller.
//
// Update is not atomic: a failure after the delete leaves the slot absent.
func (d *Dependency) Update(ctx context.Context, fetcher Fetcher, packageRoot, versionOverride string) error {
	depsDir := filepath.Join(packageRoot, constants.DependenciesDirName)
	if !fsutil.IsDir(depsDir) {
		return spmerrors.New(spmerrors.BrokenPackage, "%s has no %s directory", packageRoot, constants.DependenciesDirName)
	}

	slot := d.SlotDir(packageRoot)
	if !fsutil.IsDir(slot) {
		return spmerrors.New(spmerrors.DependencyNotFound, "dependency %s is not installed in %s", d.FullName(), packageRoot).
			WithRemediation(fmt.Sprintf("Run 'spm add %s' to install it", d.URL))
	}

	version := d.Version
	if versionOverride != "" {
		version = versionOverride
	}

	ui.Logger().Debug("updating dependency", "dependency", d.FullName(), "version", version, "slot", slot)

	if err := os.RemoveAll(slot); err != nil {
		return fmt.Errorf("failed to remove %s: %w", slot, err)
	}

	if d.IsLocal() {
		if _, err := RequireLibrary(d.URL); err != nil {
			return err
		}
		if err := fsutil.CopyDir(d.URL, slot); err != nil {
			_ = os.RemoveAll(slot)
			return fmt.Errorf("failed to copy %s: %w", d.URL, err)
		}
	} else {
		if fetcher == nil {
			return fmt.Errorf("no git fetcher configured for %s", d.URL)
		}
		if _, err := fetcher.FetchWithVersion(ctx, d.URL, version, slot); err != nil {
			_ = os.RemoveAll(slot)
			return err
		}
	}

	if _, err := RequireLibrary(slot); err != nil {
		_ = os.RemoveAll(slot)
		return err
	}

	d.Version = version
	return nil
}

// RequireLibrary loads the package at dir and fails unless it is a library
func RequireLibrary(dir string) (*Manifest, error) {
	m, err := Load(dir)
	if err != nil {
		return nil, err
	}
	if !m.IsLibrary {
		return nil, spmerrors.New(spmerrors.NotALibrary, "%s is not a library package", m.FullName()).
			WithRemediation("Only packages with \"is_library\": true can be used as dependencies")
	}
	return m, nil
}
