// Package lock provides advisory per-package file locks so two spm processes do not
// mutate the same package directory at once.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/ui"
)

// Lock is a held advisory lock
type Lock struct {
	file   *os.File
	path   string
	target string
}

// PathFor returns the lock file guarding target inside locksDir
func PathFor(locksDir, target string) string {
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}
	sum := sha256.Sum256([]byte(filepath.Clean(target)))
	return filepath.Join(locksDir, filepath.Base(target)+"-"+hex.EncodeToString(sum[:8])+".lock")
}

// TryAcquire takes the lock for target without waiting. A lock held by another
// process (or another handle in this one) is a Locked error.
func TryAcquire(locksDir, target string) (*Lock, error) {
	if err := os.MkdirAll(locksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	path := PathFor(locksDir, target)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	held, err := tryLock(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !held {
		_ = f.Close()
		return nil, spmerrors.New(spmerrors.Locked, "%s is being modified by another spm process", target).
			WithRemediation("Wait for the other command to finish and retry")
	}

	// Owner pid, for humans inspecting a stuck lock
	_ = f.Truncate(0)
	_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)

	ui.Logger().Debug("acquired lock", "target", target, "lock", path)
	return &Lock{file: f, path: path, target: target}, nil
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	l.file = nil
	ui.Logger().Debug("released lock", "target", l.target)
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
