// Package enginetest provides an in-memory git remote for exercising the engine without git.
package enginetest

import (
	"context"
	"crypto/sha1" //nolint:gosec // Commit ids only need to look like git's.
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.GitTransport = (*Remote)(nil)

// Remote is a fake ports.GitTransport serving repositories held in memory.
// Mirrors snapshot the repository at sync time, so commits pushed later stay
// invisible until the mirror is synced again.
type Remote struct {
	mu       sync.Mutex
	repos    map[string]*Repo
	mirrors  map[string]map[string]map[string]string
	calls    map[string]int
	failures map[string]int
}

// NewRemote returns an empty remote.
func NewRemote() *Remote {
	return &Remote{
		repos:    make(map[string]*Repo),
		mirrors:  make(map[string]map[string]map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
}

// Repo returns the repository served at url, creating it when missing.
func (r *Remote) Repo(url string) *Repo {
	r.mu.Lock()
	defer r.mu.Unlock()

	url = domain.TransportURL(url)
	repo, ok := r.repos[url]
	if !ok {
		repo = &Repo{
			remote:  r,
			url:     url,
			head:    "main",
			refs:    make(map[string]string),
			tags:    make(map[string]string),
			commits: make(map[string]map[string]string),
		}
		r.repos[url] = repo
	}
	return repo
}

// Fail makes the next n calls of op ("ListRefs" or "SyncMirror") against url fail.
func (r *Remote) Fail(op, url string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op+" "+domain.TransportURL(url)] = n
}

// Calls returns how often op was invoked against url. Checkout counts are keyed by mirror URL.
func (r *Remote) Calls(op, url string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op+" "+domain.TransportURL(url)]
}

// ListRefs implements ports.GitTransport.
func (r *Remote) ListRefs(_ context.Context, url string) ([]domain.RemoteRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.call("ListRefs", url)
	if err != nil {
		return nil, err
	}

	var refs []domain.RemoteRef
	if commit, ok := repo.refs["refs/heads/"+repo.head]; ok {
		refs = append(refs, domain.RemoteRef{Name: domain.HeadRef, Commit: commit})
	}
	for _, name := range sortedKeys(repo.refs) {
		commit := repo.refs[name]
		if tagObject, annotated := repo.tags[name]; annotated {
			refs = append(refs,
				domain.RemoteRef{Name: name, Commit: tagObject},
				domain.RemoteRef{Name: name + domain.PeeledSuffix, Commit: commit},
			)
			continue
		}
		refs = append(refs, domain.RemoteRef{Name: name, Commit: commit})
	}
	return refs, nil
}

// SyncMirror implements ports.GitTransport.
func (r *Remote) SyncMirror(_ context.Context, url, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	repo, err := r.call("SyncMirror", url)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "HEAD"), []byte("ref: refs/heads/"+repo.head+"\n"), domain.FilePerm); err != nil {
		return err
	}

	snapshot := make(map[string]map[string]string, len(repo.commits))
	for commit, files := range repo.commits {
		snapshot[commit] = files
	}
	r.mirrors[dir] = snapshot
	return nil
}

// Commits implements ports.GitTransport.
func (r *Remote) Commits(_ context.Context, dir string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, err := r.mirror(dir)
	if err != nil {
		return nil, err
	}
	return sortedKeys(snapshot), nil
}

// Checkout implements ports.GitTransport.
func (r *Remote) Checkout(_ context.Context, dir, commit, dest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, err := r.mirror(dir)
	if err != nil {
		return err
	}
	r.calls["Checkout "+dir]++

	files, ok := snapshot[commit]
	if !ok {
		return zerr.With(zerr.New("object not found"), "commit", commit)
	}

	for _, name := range sortedKeys(files) {
		p := filepath.Join(dest, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(files[name]), domain.FilePerm); err != nil {
			return err
		}
	}
	return nil
}

func (r *Remote) call(op, url string) (*Repo, error) {
	key := op + " " + url
	r.calls[key]++

	if r.failures[key] > 0 {
		r.failures[key]--
		return nil, zerr.With(zerr.New("connection refused"), "url", url)
	}

	repo, ok := r.repos[url]
	if !ok {
		return nil, zerr.With(zerr.New("repository not found"), "url", url)
	}
	return repo, nil
}

func (r *Remote) mirror(dir string) (map[string]map[string]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "mirror missing"), "dir", dir)
	}
	snapshot, ok := r.mirrors[dir]
	if !ok {
		return nil, zerr.With(zerr.New("mirror was never synced"), "dir", dir)
	}
	return snapshot, nil
}

// Repo is one repository served by a Remote.
type Repo struct {
	remote  *Remote
	url     string
	head    string
	refs    map[string]string
	tags    map[string]string
	commits map[string]map[string]string
}

// URL returns the repository URL.
func (p *Repo) URL() string {
	return p.url
}

// Commit records a commit holding files and returns its id.
func (p *Repo) Commit(files map[string]string) string {
	p.remote.mu.Lock()
	defer p.remote.mu.Unlock()

	h := sha1.New() //nolint:gosec // Commit ids only need to look like git's.
	_, _ = fmt.Fprintf(h, "%s\x00%d\x00", p.url, len(p.commits))
	for _, name := range sortedKeys(files) {
		_, _ = fmt.Fprintf(h, "%s\x00%s\x00", name, files[name])
	}
	id := hex.EncodeToString(h.Sum(nil))
	p.commits[id] = files
	return id
}

// CommitAs records a commit under a chosen id, for prefix collision tests.
func (p *Repo) CommitAs(id string, files map[string]string) string {
	p.remote.mu.Lock()
	defer p.remote.mu.Unlock()

	p.commits[id] = files
	return id
}

// Branch points refs/heads/name at commit.
func (p *Repo) Branch(name, commit string) {
	p.remote.mu.Lock()
	defer p.remote.mu.Unlock()
	p.refs["refs/heads/"+name] = commit
}

// Tag points refs/tags/name at commit. Annotated tags are advertised with a peeled entry.
func (p *Repo) Tag(name, commit string, annotated bool) {
	p.remote.mu.Lock()
	defer p.remote.mu.Unlock()

	ref := "refs/tags/" + name
	p.refs[ref] = commit
	if annotated {
		sum := sha1.Sum([]byte("tag " + name + commit)) //nolint:gosec // Fake tag object id.
		p.tags[ref] = hex.EncodeToString(sum[:])
	}
}

// SetHead makes branch the default branch.
func (p *Repo) SetHead(branch string) {
	p.remote.mu.Lock()
	defer p.remote.mu.Unlock()
	p.head = branch
}

// Manifest renders a twig.yaml file for a fake package.
func Manifest(name, version string, deps map[string]string) map[string]string {
	doc := struct {
		Name         string            `yaml:"name"`
		Version      string            `yaml:"version,omitempty"`
		Dependencies map[string]string `yaml:"dependencies,omitempty"`
	}{Name: name, Version: version, Dependencies: deps}

	data, err := yaml.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return map[string]string{domain.ManifestFileName: string(data)}
}

// Files merges file sets, later sets winning.
func Files(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

// URL builds a file:// location for a fake repository name.
func URL(name string) string {
	return "file:///remote/" + strings.TrimSuffix(name, ".git") + ".git"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
