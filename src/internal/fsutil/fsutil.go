// Package fsutil copies and moves package trees
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"
)

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Within reports whether path is root or lies below it. Both must be clean.
func Within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// RealPath returns the absolute path with symlinks resolved as far as path exists
func RealPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	rest := ""
	for dir := abs; ; dir = filepath.Dir(dir) {
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(real, rest)
		}
		if filepath.Dir(dir) == dir {
			return abs
		}
		rest = filepath.Join(filepath.Base(dir), rest)
	}
}

// Overlaps reports whether one of the two trees contains the other
func Overlaps(a, b string) bool {
	a, b = RealPath(a), RealPath(b)
	return Within(a, b) || Within(b, a)
}

// CopyDir recursively copies src into dst, creating dst if needed. Symlinks that
// resolve inside src are followed and their targets copied in place of the link;
// a link that leaves src, dangles or loops back onto its own parents is an error.
func CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return err
	}

	return copy.Copy(abs, dst, copy.Options{
		Skip: func(info os.FileInfo, path, _ string) (bool, error) {
			if info.Mode()&os.ModeSymlink == 0 {
				return false, nil
			}
			return false, checkLink(root, path)
		},
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Deep
		},
		// Copies must stay removable by refresh and uninstall
		PermissionControl: copy.AddPermission(0200),
	})
}

// checkLink fails unless the symlink at path resolves to an existing file or
// directory inside root that is not one of the link's own parents
func checkLink(root, path string) error {
	rel, _ := filepath.Rel(root, path)

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("symlink %s cannot be resolved: %w", rel, err)
	}
	if !Within(root, target) {
		return fmt.Errorf("symlink %s points outside the package: %s", rel, target)
	}

	parent, err := filepath.EvalSymlinks(filepath.Dir(path))
	if err != nil {
		return err
	}
	if IsDir(target) && Within(target, parent) {
		return fmt.Errorf("symlink %s points at its own parent directory %s", rel, target)
	}
	return nil
}

// Move renames src to dst, falling back to copy and delete when a rename is not possible
// (for example across filesystems).
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if Exists(dst) {
		return fmt.Errorf("failed to move %s: %s already exists", src, dst)
	}

	if err := CopyDir(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("failed to move %s: %w", src, err)
	}
	return os.RemoveAll(src)
}
