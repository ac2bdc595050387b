package lock

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
)

func TestTryAcquireContention(t *testing.T) {
	locks := filepath.Join(t.TempDir(), "locks")
	target := t.TempDir()

	first, err := TryAcquire(locks, target)
	require.NoError(t, err)

	_, err = TryAcquire(locks, target)
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.Locked))

	// Other targets are independent
	other, err := TryAcquire(locks, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, other.Release())

	require.NoError(t, first.Release())

	again, err := TryAcquire(locks, target)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestReleaseIsIdempotent(t *testing.T) {
	l, err := TryAcquire(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	require.NoError(t, l.Release())
	require.NoError(t, l.Release())

	var nilLock *Lock
	assert.NoError(t, nilLock.Release())
}

func TestLockFileRecordsPid(t *testing.T) {
	locks := t.TempDir()
	target := t.TempDir()

	l, err := TryAcquire(locks, target)
	require.NoError(t, err)
	defer func() { _ = l.Release() }()

	data, err := os.ReadFile(PathFor(locks, target))
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(string(data)))
}

func TestPathForIsStable(t *testing.T) {
	a := PathFor("/locks", "/pkgs/user/tool")
	b := PathFor("/locks", "/pkgs/user/tool/")
	c := PathFor("/locks", "/pkgs/other/tool")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasSuffix(a, ".lock"))
	assert.Contains(t, filepath.Base(a), "tool-")
}
