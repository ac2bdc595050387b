// Package source turns what a user passes to install or add (a directory, an archive,
// a repository url or a user/repo spec) into a package directory on disk.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/download"
	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/gitfetch"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/ui"
)

// Kind is where a resolved package came from
type Kind int

const (
	Directory Kind = iota
	Archive
	RemoteArchive
	Repository
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case Archive:
		return "archive"
	case RemoteArchive:
		return "remote archive"
	case Repository:
		return "repository"
	default:
		return "unknown"
	}
}

// Fetcher clones repositories into temporary directories
type Fetcher interface {
	Fetch(ctx context.Context, baseURL, repoSpec string) (string, error)
	FetchWithVersion(ctx context.Context, repoURL, version, dest string) (string, error)
	Cleanup(path string) error
}

// Downloader fetches a url to a local file, verifying it when a checksum is given
type Downloader interface {
	File(ctx context.Context, url, destPath, expectedSHA256 string) error
}

// Resolved is a package directory ready to be installed or vendored
type Resolved struct {
	// Path is the package directory
	Path string
	// Origin is what to record as the package's url: an absolute path for local
	// sources, the repository or archive url otherwise
	Origin string
	Kind   Kind
	// Temporary is set when Path lives in a scratch directory that may be moved
	// and must be cleaned up
	Temporary bool

	cleanup func() error
}

// Cleanup releases a temporary source. Failures are logged, not returned.
func (r *Resolved) Cleanup() {
	if r == nil || r.cleanup == nil {
		return
	}
	if err := r.cleanup(); err != nil {
		ui.Warning("Failed to clean up %s: %v", r.Path, err)
	}
	r.cleanup = nil
}

// Resolver resolves install sources
type Resolver struct {
	fetcher    Fetcher
	downloader Downloader
	tmpRoot    string
	baseURL    string
}

// NewResolver returns a resolver that clones through fetcher, downloads through
// downloader, unpacks archives under tmpRoot and expands user/repo specs against baseURL
func NewResolver(fetcher Fetcher, downloader Downloader, tmpRoot, baseURL string) *Resolver {
	return &Resolver{
		fetcher:    fetcher,
		downloader: downloader,
		tmpRoot:    tmpRoot,
		baseURL:    baseURL,
	}
}

// Resolve locates the package named by expr. version selects a tag or branch for
// repositories and is ignored for local sources and archives.
func (r *Resolver) Resolve(ctx context.Context, expr, version string) (*Resolved, error) {
	if expr == "" {
		return nil, spmerrors.New(spmerrors.InvalidSource, "no package source given")
	}

	if info, err := os.Stat(expr); err == nil {
		return r.resolveLocal(expr, info)
	}

	if IsRemoteArchive(expr) {
		return r.resolveRemoteArchive(ctx, expr)
	}

	if gitfetch.IsGitURL(expr) {
		ui.Debug("Resolving %s as a git repository", expr)
		dir, err := r.fetcher.FetchWithVersion(ctx, expr, version, "")
		if err != nil {
			return nil, err
		}
		return r.repository(dir, expr), nil
	}

	spec := strings.Trim(expr, "/")
	if strings.Count(spec, "/") < 1 {
		return nil, spmerrors.New(spmerrors.InvalidSource, "%s is not a directory, archive or repository", expr).
			WithRemediation(
				"Pass a package directory or archive path",
				"Or a repository as user/repo or a full git URL",
			)
	}

	repoURL := gitfetch.JoinURL(r.baseURL, spec)
	ui.Debug("Resolving %s as %s", expr, repoURL)

	var dir string
	var err error
	if version == "" {
		dir, err = r.fetcher.Fetch(ctx, r.baseURL, spec)
	} else {
		dir, err = r.fetcher.FetchWithVersion(ctx, repoURL, version, "")
	}
	if err != nil {
		return nil, err
	}
	return r.repository(dir, repoURL), nil
}

func (r *Resolver) repository(dir, origin string) *Resolved {
	return &Resolved{
		Path:      dir,
		Origin:    origin,
		Kind:      Repository,
		Temporary: true,
		cleanup:   func() error { return r.fetcher.Cleanup(dir) },
	}
}

func (r *Resolver) resolveLocal(expr string, info os.FileInfo) (*Resolved, error) {
	abs, err := filepath.Abs(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", expr, err)
	}

	if info.IsDir() {
		return &Resolved{Path: abs, Origin: abs, Kind: Directory}, nil
	}
	if filepath.Base(abs) == constants.ManifestFileName {
		dir := filepath.Dir(abs)
		return &Resolved{Path: dir, Origin: dir, Kind: Directory}, nil
	}
	if download.ArchiveFormat(abs) == "" {
		return nil, spmerrors.New(spmerrors.InvalidSource, "%s is not a package directory or a supported archive", expr).
			WithRemediation("Supported archives: .zip, .tar.gz, .tgz, .7z")
	}

	scratch, err := r.scratchDir()
	if err != nil {
		return nil, err
	}
	resolved, err := r.unpack(abs, scratch)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}
	resolved.Origin = abs
	resolved.Kind = Archive
	return resolved, nil
}

func (r *Resolver) resolveRemoteArchive(ctx context.Context, rawURL string) (*Resolved, error) {
	target, checksum := splitChecksum(rawURL)

	scratch, err := r.scratchDir()
	if err != nil {
		return nil, err
	}

	archivePath := filepath.Join(scratch, archiveFileName(target))
	if err := r.downloader.File(ctx, target, archivePath, checksum); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, spmerrors.Wrap(err, spmerrors.InvalidSource, "failed to download %s", target)
	}

	resolved, err := r.unpack(archivePath, scratch)
	if err != nil {
		_ = os.RemoveAll(scratch)
		return nil, err
	}
	_ = os.Remove(archivePath)
	resolved.Origin = target
	resolved.Kind = RemoteArchive
	return resolved, nil
}

// unpack extracts archivePath into scratch and names the result after the package
func (r *Resolver) unpack(archivePath, scratch string) (*Resolved, error) {
	contents := filepath.Join(scratch, "contents")
	if err := download.Extract(archivePath, contents); err != nil {
		return nil, spmerrors.Wrap(err, spmerrors.InvalidSource, "failed to extract %s", filepath.Base(archivePath))
	}
	if err := download.StripTopLevelDir(contents); err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", filepath.Base(archivePath), err)
	}

	dir := contents
	if m, err := manifest.Read(contents); err == nil && isDirName(m.Name) {
		named := filepath.Join(scratch, m.Name)
		if err := os.Rename(contents, named); err == nil {
			dir = named
		}
	}

	return &Resolved{
		Path:      dir,
		Temporary: true,
		cleanup:   func() error { return os.RemoveAll(scratch) },
	}, nil
}

func (r *Resolver) scratchDir() (string, error) {
	if err := os.MkdirAll(r.tmpRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(r.tmpRoot, "archive-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return dir, nil
}

func isDirName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// IsRemoteArchive reports whether expr is an http(s) url of a supported archive
func IsRemoteArchive(expr string) bool {
	return isHTTP(expr) && download.ArchiveFormat(stripFragment(expr)) != ""
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

func stripFragment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}

// splitChecksum separates an optional "#sha256=<hex>" fragment from a url
func splitChecksum(rawURL string) (target, checksum string) {
	target = stripFragment(rawURL)
	if len(target) == len(rawURL) {
		return target, ""
	}
	fragment := rawURL[len(target)+1:]
	if v, ok := strings.CutPrefix(fragment, "sha256="); ok {
		return target, v
	}
	return target, ""
}

func archiveFileName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		return path.Base(u.Path)
	}
	return "package" + download.ArchiveFormat(rawURL)
}
