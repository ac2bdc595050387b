package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	tests := map[string]struct {
		kind Kind
		want string
	}{
		"known kind":   {kind: AlreadyInstalled, want: "Already Installed"},
		"zero kind":    {kind: Unknown, want: "Error"},
		"out of range": {kind: Kind(999), want: "Error"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestErrorMessage(t *testing.T) {
	plain := New(PackageNotFound, "no package named %q", "web")
	assert.Equal(t, `no package named "web"`, plain.Error())

	wrapped := Wrap(fs.ErrNotExist, MissingManifest, "reading manifest")
	assert.Equal(t, "reading manifest: file does not exist", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, fs.ErrNotExist))
}

func TestIsAndKindOf(t *testing.T) {
	inner := New(NotALibrary, "not a library")
	outer := Wrap(inner, BrokenPackage, "refreshing")
	chained := fmt.Errorf("command failed: %w", outer)

	assert.True(t, Is(chained, BrokenPackage))
	assert.True(t, Is(chained, NotALibrary))
	assert.False(t, Is(chained, Locked))
	assert.Equal(t, BrokenPackage, KindOf(chained))

	assert.False(t, Is(stderrors.New("plain"), BrokenPackage))
	assert.Equal(t, Unknown, KindOf(stderrors.New("plain")))
	assert.False(t, Is(nil, BrokenPackage))
}

func TestFormatPlain(t *testing.T) {
	err := New(AlreadyInstalled, "package 'user/tool' is already installed").
		WithRemediation("Use --force to overwrite it")

	got := FormatPlain(err)
	assert.Contains(t, got, "Error [Already Installed]: package 'user/tool' is already installed")
	assert.Contains(t, got, "To fix this:")
	assert.Contains(t, got, "• Use --force to overwrite it")

	untyped := FormatPlain(stderrors.New("boom"))
	assert.Equal(t, "Error: boom\n", untyped)
	assert.Empty(t, FormatPlain(nil))
}

func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, New(Locked, "locked"))
	assert.Contains(t, buf.String(), "locked")

	buf.Reset()
	Fprint(&buf, nil)
	assert.Empty(t, buf.String())
}
