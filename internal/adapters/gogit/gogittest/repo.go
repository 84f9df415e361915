// Package gogittest builds throwaway git repositories for transport tests.
package gogittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var signature = object.Signature{
	Name:  "twig",
	Email: "twig@example.com",
	When:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
}

// RequireGit skips t when the git binary is unavailable. File URLs are served by git-upload-pack.
func RequireGit(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// Repo is a non-bare repository with a main branch.
type Repo struct {
	t    testing.TB
	Dir  string
	repo *git.Repository
}

// New creates an empty repository in a directory called name.git.
func New(t testing.TB, name string) *Repo {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name+".git")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	return &Repo{t: t, Dir: dir, repo: repo}
}

// URL returns the file URL of the repository.
func (r *Repo) URL() string {
	return "file://" + filepath.ToSlash(r.Dir)
}

// Write places a file in the worktree.
func (r *Repo) Write(name, content string, perm os.FileMode) {
	r.t.Helper()
	p := filepath.Join(r.Dir, filepath.FromSlash(name))
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(r.t, os.WriteFile(p, []byte(content), perm))
}

// Link places a symlink in the worktree.
func (r *Repo) Link(name, target string) {
	r.t.Helper()
	require.NoError(r.t, os.Symlink(target, filepath.Join(r.Dir, filepath.FromSlash(name))))
}

// Commit writes files, stages everything and commits on the current branch.
func (r *Repo) Commit(files map[string]string) string {
	r.t.Helper()

	for name, content := range files {
		r.Write(name, content, 0o644)
	}

	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.AddWithOptions(&git.AddOptions{All: true}))

	hash, err := wt.Commit("update", &git.CommitOptions{Author: &signature, Committer: &signature, AllowEmptyCommits: true})
	require.NoError(r.t, err)
	return hash.String()
}

// Branch points refs/heads/name at commit.
func (r *Repo) Branch(name, commit string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(commit))
	require.NoError(r.t, r.repo.Storer.SetReference(ref))
}

// Tag creates a lightweight or annotated tag at commit.
func (r *Repo) Tag(name, commit string, annotated bool) {
	r.t.Helper()
	var opts *git.CreateTagOptions
	if annotated {
		opts = &git.CreateTagOptions{Tagger: &signature, Message: name}
	}
	_, err := r.repo.CreateTag(name, plumbing.NewHash(commit), opts)
	require.NoError(r.t, err)
}
