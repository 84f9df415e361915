package fs

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TreeCopier = (*Copier)(nil)

// Copier copies package trees.
type Copier struct {
	walker *Walker
}

// NewCopier creates a new Copier.
func NewCopier(walker *Walker) *Copier {
	return &Copier{walker: walker}
}

// CopyTree copies src into dst, which must not exist yet.
// Executable bits and symlinks are preserved; VCS metadata is not copied.
func (c *Copier) CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat copy source"), "path", src)
	}
	if !info.IsDir() {
		return zerr.With(zerr.New("copy source is not a directory"), "path", src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return zerr.With(zerr.Wrap(iofs.ErrExist, "copy destination already exists"), "path", dst)
	}
	if err := os.MkdirAll(dst, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dst)
	}

	var copyErr error
	for rel, d := range c.walker.Walk(src, nil) {
		from := filepath.Join(src, filepath.FromSlash(rel))
		to := filepath.Join(dst, filepath.FromSlash(rel))

		if copyErr = os.MkdirAll(filepath.Dir(to), domain.DirPerm); copyErr != nil {
			copyErr = zerr.With(zerr.Wrap(copyErr, "failed to create directory"), "path", filepath.Dir(to))
			break
		}

		if d.Type()&iofs.ModeSymlink != 0 {
			copyErr = copySymlink(from, to)
		} else {
			copyErr = copyFile(from, to)
		}
		if copyErr != nil {
			break
		}
	}
	return copyErr
}

func copySymlink(from, to string) error {
	target, err := os.Readlink(from)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", from)
	}
	if err := os.Symlink(target, to); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", to)
	}
	return nil
}

func copyFile(from, to string) error {
	info, err := os.Stat(from)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", from)
	}

	perm := os.FileMode(domain.FilePerm)
	if info.Mode().Perm()&0o111 != 0 {
		perm = 0o755
	}

	in, err := os.Open(from) //nolint:gosec // Path comes from walking a trusted tree
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", from)
	}
	defer in.Close() //nolint:errcheck // Read-only file

	out, err := os.OpenFile(to, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm) //nolint:gosec // Path is below a staging directory
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", to)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", to)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", to)
	}
	return nil
}
