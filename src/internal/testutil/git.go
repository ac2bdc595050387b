package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a local git repository used as a clone source
type Repo struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
}

var signature = object.Signature{
	Name:  "spm tests",
	Email: "tests@spm.invalid",
	When:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

// InitRepo creates a repository in dir. Empty directories get a .gitkeep so they
// survive the clone.
func InitRepo(t testing.TB, dir string) *Repo {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repository: %v", err)
	}
	return &Repo{t: t, Dir: dir, Repo: repo}
}

// CommitAll stages everything in the working tree and commits it
func (r *Repo) CommitAll(message string) plumbing.Hash {
	r.t.Helper()
	keepEmptyDirs(r.t, r.Dir)

	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("failed to open worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		r.t.Fatalf("failed to stage files: %v", err)
	}
	sig := signature
	hash, err := wt.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig, AllowEmptyCommits: true})
	if err != nil {
		r.t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

// Tag creates a lightweight tag, or an annotated one when message is non-empty
func (r *Repo) Tag(name string, hash plumbing.Hash, message string) {
	r.t.Helper()
	var opts *git.CreateTagOptions
	if message != "" {
		sig := signature
		opts = &git.CreateTagOptions{Tagger: &sig, Message: message}
	}
	if _, err := r.Repo.CreateTag(name, hash, opts); err != nil {
		r.t.Fatalf("failed to tag %s: %v", name, err)
	}
}

// Branch points a branch at hash without checking it out
func (r *Repo) Branch(name string, hash plumbing.Hash) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := r.Repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("failed to create branch %s: %v", name, err)
	}
}

// WriteFile writes a file relative to the repository root
func (r *Repo) WriteFile(rel, body string) {
	r.t.Helper()
	path := filepath.Join(r.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		r.t.Fatal(err)
	}
}

// RemoveFile deletes a tracked file and stages the removal
func (r *Repo) RemoveFile(rel string) {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	if err != nil {
		r.t.Fatalf("failed to open worktree: %v", err)
	}
	if _, err := wt.Remove(filepath.ToSlash(rel)); err != nil {
		r.t.Fatalf("failed to remove %s: %v", rel, err)
	}
}

func keepEmptyDirs(t testing.TB, root string) {
	t.Helper()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return os.WriteFile(filepath.Join(path, ".gitkeep"), nil, 0644)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to keep empty directories: %v", err)
	}
}

// RequireLocalTransport skips the test when local clones cannot be served
func RequireLocalTransport(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack not available for local clones")
	}
}
