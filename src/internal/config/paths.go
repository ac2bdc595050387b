// Package config manages spm configuration including the on-disk layout and user settings
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/shellpm/spm/src/internal/constants"
)

// Paths holds all important spm directory paths
type Paths struct {
	Root     string // Root spm directory (~/.spm)
	Packages string // Installed packages (~/.spm/packages)
	Bin      string // Shims for packages registered to the environment (~/.spm/bin)
	Tmp      string // Scratch space for clones and downloads (~/.spm/tmp)
	Locks    string // Advisory lock files (~/.spm/locks)
}

var (
	defaultPaths *Paths
	pathsOnce    sync.Once
)

// DefaultPaths returns the default spm paths.
// This function is thread-safe and guarantees single initialization.
func DefaultPaths() *Paths {
	pathsOnce.Do(func() {
		defaultPaths = NewPaths(getRootDir())
	})
	return defaultPaths
}

// NewPaths builds the layout for an explicit root directory
func NewPaths(root string) *Paths {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Paths{
		Root:     root,
		Packages: filepath.Join(root, constants.PackagesDirName),
		Bin:      filepath.Join(root, constants.BinDirName),
		Tmp:      filepath.Join(root, constants.TmpDirName),
		Locks:    filepath.Join(root, constants.LocksDirName),
	}
}

// getRootDir returns the root spm directory
func getRootDir() string {
	if root := os.Getenv("SPM_ROOT"); root != "" {
		return root
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return constants.RootDirName
	}

	return filepath.Join(home, constants.RootDirName)
}

// ConfigFile returns the path to the user settings file
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.Root, constants.ConfigFileName)
}

// PackageDir returns where a package directory named dirName is installed
func (p *Paths) PackageDir(namespace, dirName string) string {
	if namespace == "" {
		return filepath.Join(p.Packages, dirName)
	}
	return filepath.Join(p.Packages, namespace, dirName)
}

// EnsureDirectories creates all necessary spm directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Packages,
		p.Bin,
		p.Tmp,
		p.Locks,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// ResetPathsCache resets the cached paths, forcing reinitialization on next access.
// This is primarily useful for testing.
func ResetPathsCache() {
	pathsOnce = sync.Once{}
	defaultPaths = nil
}
