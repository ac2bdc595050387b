package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellpm/spm/src/internal/config"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/lock"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/testutil"
)

// repoFetcher serves repository urls from prepared package directories
type repoFetcher struct {
	repos map[string]string
}

func (f *repoFetcher) FetchWithVersion(_ context.Context, repoURL, version, dest string) (string, error) {
	src, ok := f.repos[repoURL+"@"+version]
	if !ok {
		return "", spmerrors.New(spmerrors.VersionNotFound, "Version '%s' not found in repository", version)
	}
	if err := fsutil.CopyDir(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func newOps(t *testing.T, fetcher manifest.Fetcher, opts ...Option) *Operations {
	t.Helper()
	return New(config.NewPaths(t.TempDir()), fetcher, opts...)
}

func newPackage(t *testing.T, p testutil.Package) string {
	t.Helper()
	return testutil.WritePackage(t, filepath.Join(t.TempDir(), p.Name), p)
}

func TestAddDependency(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{Name: "app"})
	lib := newPackage(t, testutil.Package{Name: "strings", Library: true})

	dep, err := ops.AddDependency(context.Background(), app, lib, lib, "")
	require.NoError(t, err)
	assert.Equal(t, "local/strings", dep.FullName())
	assert.FileExists(t, filepath.Join(app, "dependencies", "local", "strings", "lib.sh"))

	m, err := manifest.Load(app)
	require.NoError(t, err)
	require.Equal(t, 1, m.Dependencies.Len())
	assert.Equal(t, lib, m.Dependencies.Get(0).URL)
}

func TestAddDependency_RemoteURL(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{Name: "app"})
	fetched := newPackage(t, testutil.Package{Name: "colors", Library: true})

	dep, err := ops.AddDependency(context.Background(), app, fetched, "https://github.com/acme/colors.git", "v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "acme/colors", dep.FullName())
	assert.DirExists(t, filepath.Join(app, "dependencies", "acme", "colors"))

	m, err := manifest.Read(app)
	require.NoError(t, err)
	got := m.Dependencies.All()
	require.Len(t, got, 1)
	assert.Equal(t, "v1.0.0", got[0].Version)
}

func TestAddDependency_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, app string) (resolved, url string)
		want  spmerrors.Kind
	}{
		{
			name: "not a library",
			setup: func(t *testing.T, app string) (string, string) {
				src := newPackage(t, testutil.Package{Name: "tool"})
				return src, "https://github.com/acme/tool"
			},
			want: spmerrors.NotALibrary,
		},
		{
			name: "slot exists",
			setup: func(t *testing.T, app string) (string, string) {
				src := newPackage(t, testutil.Package{Name: "colors", Library: true})
				require.NoError(t, os.MkdirAll(filepath.Join(app, "dependencies", "acme", "colors"), 0755))
				return src, "https://github.com/acme/colors"
			},
			want: spmerrors.DependencySlotExists,
		},
		{
			name: "no dependencies directory",
			setup: func(t *testing.T, app string) (string, string) {
				require.NoError(t, os.RemoveAll(filepath.Join(app, "dependencies")))
				src := newPackage(t, testutil.Package{Name: "colors", Library: true})
				return src, "https://github.com/acme/colors"
			},
			want: spmerrors.BrokenPackage,
		},
		{
			name: "underivable url",
			setup: func(t *testing.T, app string) (string, string) {
				src := newPackage(t, testutil.Package{Name: "colors", Library: true})
				return src, "colors"
			},
			want: spmerrors.InvalidDependencyURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := newOps(t, nil)
			app := newPackage(t, testutil.Package{Name: "app"})
			before, err := os.ReadFile(filepath.Join(app, "package.json"))
			require.NoError(t, err)

			resolved, url := tt.setup(t, app)
			_, err = ops.AddDependency(context.Background(), app, resolved, url, "")
			require.Error(t, err)
			assert.Equal(t, tt.want, spmerrors.KindOf(err))

			after, err := os.ReadFile(filepath.Join(app, "package.json"))
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestRemoveDependency(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{
		Name:         "app",
		Dependencies: []testutil.Dependency{{URL: "https://github.com/acme/colors.git", Version: "v1"}},
	})
	slot := filepath.Join(app, "dependencies", "acme", "colors")
	testutil.WritePackage(t, slot, testutil.Package{Name: "colors", Namespace: "acme", Library: true})

	removed, err := ops.RemoveDependency(context.Background(), app, "colors", "acme")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/colors.git", removed.URL)
	assert.NoDirExists(t, slot)

	m, err := manifest.Read(app)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Dependencies.Len())
}

func TestRemoveDependency_MissingDirectoryTolerated(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{
		Name:         "app",
		Dependencies: []testutil.Dependency{{URL: "https://github.com/acme/colors", Version: "v1"}},
	})

	_, err := ops.RemoveDependency(context.Background(), app, "colors", "acme")
	require.NoError(t, err)
}

func TestRemoveDependency_NotFound(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{
		Name:         "app",
		Dependencies: []testutil.Dependency{{URL: "https://github.com/acme/colors", Version: "v1"}},
	})
	before, err := os.ReadFile(filepath.Join(app, "package.json"))
	require.NoError(t, err)

	_, err = ops.RemoveDependency(context.Background(), app, "strings", "acme")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.DependencyNotFound))

	after, err := os.ReadFile(filepath.Join(app, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRefreshDependencies_NoDependencies(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{Name: "app"})
	before, err := manifest.Read(app)
	require.NoError(t, err)

	refreshed, err := ops.RefreshDependencies(context.Background(), app, "")
	require.NoError(t, err)
	assert.Empty(t, refreshed)
	assert.NotNil(t, refreshed)

	entries, err := os.ReadDir(filepath.Join(app, "dependencies"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	after, err := manifest.Read(app)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// refreshFixture builds an app depending on acme/colors and acme/strings, both
// installed at v1, and a fetcher that only knows v2 of the requested repos.
func refreshFixture(t *testing.T, v2Repos ...string) (string, *repoFetcher) {
	t.Helper()
	app := newPackage(t, testutil.Package{
		Name: "app",
		Dependencies: []testutil.Dependency{
			{URL: "https://github.com/acme/colors", Version: "v1"},
			{URL: "https://github.com/acme/strings", Version: "v1"},
		},
	})
	for _, name := range []string{"colors", "strings"} {
		testutil.WritePackage(t, filepath.Join(app, "dependencies", "acme", name),
			testutil.Package{Name: name, Namespace: "acme", Library: true, Version: "1.0.0"})
	}

	fetcher := &repoFetcher{repos: map[string]string{}}
	for _, name := range v2Repos {
		src := testutil.WritePackage(t, filepath.Join(t.TempDir(), name),
			testutil.Package{Name: name, Namespace: "acme", Library: true, Version: "2.0.0"})
		fetcher.repos["https://github.com/acme/"+name+"@v2"] = src
	}
	return app, fetcher
}

func TestRefreshDependencies(t *testing.T) {
	app, fetcher := refreshFixture(t, "colors", "strings")
	ops := newOps(t, fetcher)

	refreshed, err := ops.RefreshDependencies(context.Background(), app, "v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/colors", "acme/strings"}, refreshed)

	m, err := manifest.Read(app)
	require.NoError(t, err)
	for _, d := range m.Dependencies.All() {
		assert.Equal(t, "v2", d.Version, d.FullName())
	}

	lib, err := manifest.Load(filepath.Join(app, "dependencies", "acme", "strings"))
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", lib.Version)
}

func TestRefreshDependencies_FailureAborts(t *testing.T) {
	app, fetcher := refreshFixture(t, "colors")
	ops := newOps(t, fetcher)
	before, err := os.ReadFile(filepath.Join(app, "package.json"))
	require.NoError(t, err)

	refreshed, err := ops.RefreshDependencies(context.Background(), app, "v2")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.VersionNotFound))
	assert.Nil(t, refreshed)

	after, err := os.ReadFile(filepath.Join(app, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// Update is not atomic: the failed slot is gone
	assert.NoDirExists(t, filepath.Join(app, "dependencies", "acme", "strings"))
}

func TestRefreshDependencies_ContinueOnError(t *testing.T) {
	app, fetcher := refreshFixture(t, "strings")
	ops := newOps(t, fetcher, WithContinueOnError(true))

	refreshed, err := ops.RefreshDependencies(context.Background(), app, "v2")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.VersionNotFound))
	assert.Equal(t, []string{"acme/strings"}, refreshed)

	m, err := manifest.Read(app)
	require.NoError(t, err)
	deps := m.Dependencies.All()
	require.Len(t, deps, 2)
	assert.Equal(t, "v1", deps[0].Version)
	assert.Equal(t, "v2", deps[1].Version)
}

func TestOperations_Locked(t *testing.T) {
	ops := newOps(t, nil)
	app := newPackage(t, testutil.Package{Name: "app"})

	held, err := lock.TryAcquire(ops.paths.Locks, app)
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	_, err = ops.RefreshDependencies(context.Background(), app, "")
	require.Error(t, err)
	assert.True(t, spmerrors.Is(err, spmerrors.Locked))

	_, err = ops.RemoveDependency(context.Background(), app, "x", "y")
	assert.True(t, spmerrors.Is(err, spmerrors.Locked))
}
