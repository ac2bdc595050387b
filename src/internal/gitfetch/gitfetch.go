// Package gitfetch clones package repositories and checks out tags or branches
package gitfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/ui"
)

// Service fetches repositories into a scratch directory
type Service struct {
	tmpRoot  string
	timeout  time.Duration
	progress io.Writer
	auth     func(url string) transport.AuthMethod
}

// Option configures a Service
type Option func(*Service)

// WithTimeout bounds each clone. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithProgress streams clone progress to w
func WithProgress(w io.Writer) Option {
	return func(s *Service) { s.progress = w }
}

// New returns a service that creates temporary clones under tmpRoot
func New(tmpRoot string, opts ...Option) *Service {
	s := &Service{tmpRoot: tmpRoot, auth: authForURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TempRoot returns the directory temporary clones are created in
func (s *Service) TempRoot() string {
	return s.tmpRoot
}

// Fetch clones baseURL joined with repoSpec into a fresh temporary directory and
// returns the working tree path. The caller owns the result and releases it with Cleanup.
func (s *Service) Fetch(ctx context.Context, baseURL, repoSpec string) (string, error) {
	spec := strings.Trim(repoSpec, "/")
	for _, part := range strings.Split(spec, "/") {
		if part == "" || part == "." || part == ".." {
			return "", spmerrors.New(spmerrors.InvalidSource, "invalid repository %q", repoSpec)
		}
	}

	parent, err := s.newTempDir()
	if err != nil {
		return "", err
	}

	dest := filepath.Join(parent, filepath.FromSlash(strings.TrimSuffix(spec, ".git")))
	if err := s.clone(ctx, JoinURL(baseURL, spec), dest); err != nil {
		_ = os.RemoveAll(parent)
		return "", err
	}
	return dest, nil
}

// FetchWithVersion clones repoURL into dest (a new temporary directory when dest is
// empty). With a non-empty version the tag refs/tags/<version> or else the branch
// refs/remotes/origin/<version> is checked out on a local branch named version.
func (s *Service) FetchWithVersion(ctx context.Context, repoURL, version, dest string) (string, error) {
	cleanupOnError := dest
	if dest == "" {
		parent, err := s.newTempDir()
		if err != nil {
			return "", err
		}
		dest = filepath.Join(parent, RepoName(repoURL))
		cleanupOnError = parent
	} else if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	if err := s.clone(ctx, repoURL, dest); err != nil {
		_ = os.RemoveAll(cleanupOnError)
		return "", err
	}

	if version == "" {
		return dest, nil
	}

	repo, err := git.PlainOpen(dest)
	if err != nil {
		_ = os.RemoveAll(cleanupOnError)
		return "", fmt.Errorf("failed to open clone: %w", err)
	}
	if err := checkoutVersion(repo, version); err != nil {
		_ = os.RemoveAll(cleanupOnError)
		return "", err
	}
	return dest, nil
}

// Cleanup removes the temporary directory holding path. Paths outside the temp
// root are refused.
func (s *Service) Cleanup(path string) error {
	root, err := filepath.Abs(s.tmpRoot)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s: not inside %s", path, root)
	}

	top := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	ui.Logger().Debug("removing temporary clone", "path", filepath.Join(root, top))
	return os.RemoveAll(filepath.Join(root, top))
}

func (s *Service) newTempDir() (string, error) {
	if err := os.MkdirAll(s.tmpRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	dir, err := os.MkdirTemp(s.tmpRoot, "fetch-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	return dir, nil
}

func (s *Service) clone(ctx context.Context, url, dest string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ui.Logger().Debug("cloning repository", "url", url, "dest", dest)

	opts := &git.CloneOptions{
		URL:      url,
		Tags:     git.AllTags,
		Progress: s.progress,
	}
	if s.auth != nil {
		opts.Auth = s.auth(url)
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return spmerrors.Wrap(err, spmerrors.GitTransport, "failed to clone %s", url).
			WithRemediation("Check the repository URL and your network or credentials")
	}
	return nil
}

// checkoutVersion checks out version on a local branch of the same name
func checkoutVersion(repo *git.Repository, version string) error {
	hash, err := resolveVersion(repo, version)
	if err != nil {
		return err
	}

	branch := plumbing.NewBranchReferenceName(version)
	if _, err := repo.Reference(branch, false); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("failed to look up branch %s: %w", version, err)
		}
		if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, hash)); err != nil {
			return fmt.Errorf("failed to create branch %s: %w", version, err)
		}
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	ui.Logger().Debug("checking out version", "version", version, "commit", hash.String())

	if err := wt.Checkout(&git.CheckoutOptions{Branch: branch, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", version, err)
	}
	return nil
}

// resolveVersion finds the commit for a tag (peeling annotated tags) or a remote branch
func resolveVersion(repo *git.Repository, version string) (plumbing.Hash, error) {
	if ref, err := repo.Reference(plumbing.NewTagReferenceName(version), true); err == nil {
		hash := ref.Hash()
		if tag, err := repo.TagObject(hash); err == nil {
			commit, err := tag.Commit()
			if err != nil {
				return plumbing.ZeroHash, fmt.Errorf("tag %s does not point to a commit: %w", version, err)
			}
			hash = commit.Hash
		}
		return hash, nil
	}

	if ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", version), true); err == nil {
		return ref.Hash(), nil
	}

	return plumbing.ZeroHash, spmerrors.New(spmerrors.VersionNotFound, "Version '%s' not found in repository", version).
		WithRemediation("Use an existing tag or branch name")
}

// JoinURL joins a base URL and a repository spec with a single slash
func JoinURL(baseURL, repoSpec string) string {
	if strings.HasSuffix(baseURL, "/") {
		return baseURL + repoSpec
	}
	return baseURL + "/" + repoSpec
}

// RepoName returns the last path segment of a repository URL without ".git",
// or "repo" when there is none.
func RepoName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	name := strings.TrimSuffix(trimmed, ".git")
	if name == "" || name == "." || name == ".." {
		return "repo"
	}
	return name
}

// IsGitURL reports whether s looks like a clone URL rather than a user/repo spec
func IsGitURL(s string) bool {
	for _, prefix := range []string{"https://", "http://", "ssh://", "git+ssh://", "git://", "file://", "git@"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// authForURL picks ambient credentials: the SSH agent for ssh URLs, and
// GIT_USERNAME/GIT_PASSWORD or GITHUB_TOKEN for https.
func authForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			ui.Debug("SSH agent auth unavailable: %v", err)
			return nil
		}
		return auth
	}

	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return nil
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username == "" {
		username = os.Getenv("GITHUB_TOKEN")
		password = ""
	}
	if username == "" {
		return nil
	}
	return &http.BasicAuth{Username: username, Password: password}
}

func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}
