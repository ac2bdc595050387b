package source

import (
	"archive/zip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpm/spm/src/internal/download"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/testutil"
)

// fakeFetcher copies a prepared package for every fetch and records the requests
type fakeFetcher struct {
	pkg      string
	tmpRoot  string
	requests []string
	cleaned  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, baseURL, repoSpec string) (string, error) {
	f.requests = append(f.requests, "fetch "+baseURL+" "+repoSpec)
	return f.copy(filepath.Base(repoSpec))
}

func (f *fakeFetcher) FetchWithVersion(_ context.Context, repoURL, version, _ string) (string, error) {
	f.requests = append(f.requests, "fetch "+repoURL+"@"+version)
	return f.copy("repo")
}

func (f *fakeFetcher) Cleanup(path string) error {
	f.cleaned = append(f.cleaned, path)
	return os.RemoveAll(path)
}

func (f *fakeFetcher) copy(name string) (string, error) {
	dest := filepath.Join(f.tmpRoot, "fetch", name)
	return dest, fsutil.CopyDir(f.pkg, dest)
}

func newResolver(t *testing.T) (*Resolver, *fakeFetcher) {
	t.Helper()
	tmp := t.TempDir()
	fetcher := &fakeFetcher{
		pkg:     testutil.WritePackage(t, filepath.Join(t.TempDir(), "greeter"), testutil.Package{Name: "greeter", Namespace: "acme"}),
		tmpRoot: tmp,
	}
	return NewResolver(fetcher, &download.Client{}, tmp, "https://github.com"), fetcher
}

// zipPackage archives a package tree under a "greeter-1.0/" top-level directory
func zipPackage(t *testing.T, pkgDir, archivePath string) {
	t.Helper()
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	err = filepath.Walk(pkgDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(pkgDir, path)
		if err != nil || rel == "." {
			return err
		}
		name := "greeter-1.0/" + filepath.ToSlash(rel)
		if info.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestResolve_Directory(t *testing.T) {
	r, fetcher := newResolver(t)
	pkg := testutil.WritePackage(t, filepath.Join(t.TempDir(), "tool"), testutil.Package{Name: "tool"})

	for _, expr := range []string{pkg, filepath.Join(pkg, "package.json")} {
		resolved, err := r.Resolve(context.Background(), expr, "v1")
		require.NoError(t, err)
		assert.Equal(t, pkg, resolved.Path)
		assert.Equal(t, pkg, resolved.Origin)
		assert.Equal(t, Directory, resolved.Kind)
		assert.False(t, resolved.Temporary)
		resolved.Cleanup()
		assert.DirExists(t, pkg)
	}
	assert.Empty(t, fetcher.requests)
}

func TestResolve_LocalArchive(t *testing.T) {
	r, _ := newResolver(t)
	pkg := testutil.WritePackage(t, filepath.Join(t.TempDir(), "src"), testutil.Package{Name: "greeter"})
	archive := filepath.Join(t.TempDir(), "greeter-1.0.zip")
	zipPackage(t, pkg, archive)

	resolved, err := r.Resolve(context.Background(), archive, "")
	require.NoError(t, err)
	assert.Equal(t, Archive, resolved.Kind)
	assert.True(t, resolved.Temporary)
	assert.Equal(t, archive, resolved.Origin)
	assert.Equal(t, "greeter", filepath.Base(resolved.Path))

	_, err = manifest.Load(resolved.Path)
	require.NoError(t, err)

	resolved.Cleanup()
	assert.NoDirExists(t, resolved.Path)
}

func TestResolve_RemoteArchive(t *testing.T) {
	pkg := testutil.WritePackage(t, filepath.Join(t.TempDir(), "src"), testutil.Package{Name: "greeter"})
	archive := filepath.Join(t.TempDir(), "greeter.zip")
	zipPackage(t, pkg, archive)
	sum, err := download.ComputeSHA256(archive)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, archive)
	}))
	defer server.Close()

	r, _ := newResolver(t)
	r.downloader = &download.Client{HTTP: server.Client()}

	t.Run("verified", func(t *testing.T) {
		resolved, err := r.Resolve(context.Background(), server.URL+"/greeter.zip#sha256="+sum, "")
		require.NoError(t, err)
		defer resolved.Cleanup()
		assert.Equal(t, RemoteArchive, resolved.Kind)
		assert.Equal(t, server.URL+"/greeter.zip", resolved.Origin)
		assert.FileExists(t, filepath.Join(resolved.Path, "package.json"))
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		_, err := r.Resolve(context.Background(), server.URL+"/greeter.zip#sha256=00", "")
		require.Error(t, err)
		assert.True(t, spmerrors.Is(err, spmerrors.InvalidSource))

		var mismatch *download.ErrChecksumMismatch
		assert.ErrorAs(t, err, &mismatch)
	})
}

func TestResolve_Repositories(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		version    string
		wantOrigin string
		wantReq    string
	}{
		{
			name:       "user/repo spec",
			expr:       "acme/greeter",
			wantOrigin: "https://github.com/acme/greeter",
			wantReq:    "fetch https://github.com acme/greeter",
		},
		{
			name:       "user/repo spec with version",
			expr:       "acme/greeter",
			version:    "v1.0.0",
			wantOrigin: "https://github.com/acme/greeter",
			wantReq:    "fetch https://github.com/acme/greeter@v1.0.0",
		},
		{
			name:       "git url",
			expr:       "git@example.com:acme/greeter.git",
			version:    "main",
			wantOrigin: "git@example.com:acme/greeter.git",
			wantReq:    "fetch git@example.com:acme/greeter.git@main",
		},
		{
			name:       "https url",
			expr:       "https://example.com/acme/greeter.git",
			wantOrigin: "https://example.com/acme/greeter.git",
			wantReq:    "fetch https://example.com/acme/greeter.git@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, fetcher := newResolver(t)

			resolved, err := r.Resolve(context.Background(), tt.expr, tt.version)
			require.NoError(t, err)
			assert.Equal(t, Repository, resolved.Kind)
			assert.Equal(t, tt.wantOrigin, resolved.Origin)
			assert.True(t, resolved.Temporary)
			assert.Equal(t, []string{tt.wantReq}, fetcher.requests)

			resolved.Cleanup()
			assert.Equal(t, []string{resolved.Path}, fetcher.cleaned)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	r, _ := newResolver(t)
	notAnArchive := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notAnArchive, []byte("x"), 0644))

	for _, expr := range []string{"", "greeter", notAnArchive} {
		_, err := r.Resolve(context.Background(), expr, "")
		require.Error(t, err, expr)
		assert.True(t, spmerrors.Is(err, spmerrors.InvalidSource), expr)
	}
}

func TestSplitChecksum(t *testing.T) {
	tests := []struct {
		in, target, sum string
	}{
		{in: "https://x/p.zip", target: "https://x/p.zip"},
		{in: "https://x/p.zip#sha256=abc", target: "https://x/p.zip", sum: "abc"},
		{in: "https://x/p.zip#other", target: "https://x/p.zip"},
	}
	for _, tt := range tests {
		target, sum := splitChecksum(tt.in)
		assert.Equal(t, tt.target, target)
		assert.Equal(t, tt.sum, sum)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "directory", Directory.String())
	assert.Equal(t, "remote archive", RemoteArchive.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
