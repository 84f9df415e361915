// Package gogit implements the git transport in-process with go-git.
package gogit

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.GitTransport = (*Transport)(nil)

const remoteName = "origin"

// mirrorRefSpec copies every remote ref verbatim, as git clone --mirror does.
var mirrorRefSpec = config.RefSpec("+refs/*:refs/*")

// Transport implements ports.GitTransport with go-git.
type Transport struct{}

// NewTransport creates a Transport.
func NewTransport() *Transport {
	return &Transport{}
}

// ListRefs lists the remote's refs without touching disk. Annotated tags are followed by
// their peeled entry.
func (t *Transport) ListRefs(ctx context.Context, url string) ([]domain.RemoteRef, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: remoteName,
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{PeelingOption: git.AppendPeeled})
	if errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list remote refs"), "url", url)
	}

	hashes := make(map[plumbing.ReferenceName]plumbing.Hash, len(refs))
	for _, ref := range refs {
		if ref.Type() == plumbing.HashReference {
			hashes[ref.Name()] = ref.Hash()
		}
	}

	out := make([]domain.RemoteRef, 0, len(refs))
	for _, ref := range refs {
		switch ref.Type() {
		case plumbing.HashReference:
			out = append(out, domain.RemoteRef{Name: ref.Name().String(), Commit: ref.Hash().String()})
		case plumbing.SymbolicReference:
			if h, ok := hashes[ref.Target()]; ok {
				out = append(out, domain.RemoteRef{Name: ref.Name().String(), Commit: h.String()})
			}
		case plumbing.InvalidReference:
		}
	}
	return out, nil
}

// SyncMirror initializes a bare mirror in dir when missing and fetches every ref into it.
func (t *Transport) SyncMirror(ctx context.Context, url, dir string) error {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = initMirror(url, dir)
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open mirror"), "path", dir)
	}

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{mirrorRefSpec},
		Tags:       git.AllTags,
		Force:      true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) && !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return zerr.With(zerr.Wrap(err, "failed to fetch into mirror"), "url", url)
	}
	return nil
}

func initMirror(url, dir string) (*git.Repository, error) {
	repo, err := git.PlainInit(dir, true)
	if err != nil {
		return nil, err
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name:  remoteName,
		URLs:  []string{url},
		Fetch: []config.RefSpec{mirrorRefSpec},
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Commits walks the history of every ref in the mirror. Objects left behind by
// rewritten refs are not reported.
func (t *Transport) Commits(_ context.Context, dir string) ([]string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open mirror"), "path", dir)
	}

	refs, err := repo.References()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list refs"), "path", dir)
	}
	defer refs.Close()

	seen := make(map[plumbing.Hash]bool)
	var commits []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		tip, err := peelCommit(repo, ref.Hash())
		if err != nil {
			return zerr.With(err, "ref", ref.Name().String())
		}
		if tip == nil {
			return nil
		}
		return object.NewCommitPreorderIter(tip, seen, nil).ForEach(func(c *object.Commit) error {
			seen[c.Hash] = true
			commits = append(commits, c.Hash.String())
			return nil
		})
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list commits"), "path", dir)
	}
	return commits, nil
}

// peelCommit follows annotated tags from hash down to a commit. It returns nil
// for refs that end at a tree or blob.
func peelCommit(repo *git.Repository, hash plumbing.Hash) (*object.Commit, error) {
	for {
		obj, err := repo.Object(plumbing.AnyObject, hash)
		if err != nil {
			return nil, err
		}
		switch o := obj.(type) {
		case *object.Commit:
			return o, nil
		case *object.Tag:
			hash = o.Target
		default:
			return nil, nil
		}
	}
}

// Checkout writes the tree of commit into dest.
func (t *Transport) Checkout(ctx context.Context, dir, commit, dest string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open mirror"), "path", dir)
	}

	c, err := repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "object not found"), "commit", commit)
	}
	tree, err := c.Tree()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read commit tree"), "commit", commit)
	}

	return tree.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return writeEntry(f, dest)
	})
}

func writeEntry(f *object.File, dest string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return nil
	}
	p := filepath.Join(dest, name)

	if err := os.MkdirAll(filepath.Dir(p), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(p))
	}

	switch f.Mode {
	case filemode.Symlink:
		target, err := f.Contents()
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", f.Name)
		}
		if err := os.Symlink(target, p); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", p)
		}
		return nil
	case filemode.Regular, filemode.Deprecated, filemode.Executable:
		perm := os.FileMode(domain.FilePerm)
		if f.Mode == filemode.Executable {
			perm = 0o755
		}
		return writeBlob(f, p, perm)
	default:
		return nil
	}
}

func writeBlob(f *object.File, p string, perm os.FileMode) error {
	r, err := f.Reader()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read blob"), "path", f.Name)
	}
	defer r.Close() //nolint:errcheck // Read-only blob

	out, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm) //nolint:gosec // Path is checked to stay below dest
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", p)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "path", p)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", p)
	}
	return nil
}
