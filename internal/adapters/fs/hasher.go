package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TreeHasher = (*Hasher)(nil)

// Hasher computes content digests of package trees.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// HashTree computes a single digest over the relative path, kind, executable bit and content
// of every entry below root. Entries matching ignores are left out.
func (h *Hasher) HashTree(root string, ignores []string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat tree"), "path", root)
	}
	if !info.IsDir() {
		return "", zerr.With(zerr.New("tree root is not a directory"), "path", root)
	}

	hasher := xxhash.New()
	var walkErr error

	for rel, d := range h.walker.Walk(root, ignores) {
		if walkErr = h.hashEntry(root, rel, d.Type(), hasher); walkErr != nil {
			break
		}
	}
	if walkErr != nil {
		return "", walkErr
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashEntry(root, rel string, mode os.FileMode, hasher *xxhash.Digest) error {
	path := filepath.Join(root, filepath.FromSlash(rel))

	_, _ = hasher.WriteString(rel)
	_, _ = hasher.Write([]byte{0})

	if mode&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", path)
		}
		_, _ = hasher.Write([]byte{'l'})
		_, _ = hasher.WriteString(target)
		_, _ = hasher.Write([]byte{0})
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	kind := byte('f')
	if info.Mode().Perm()&0o111 != 0 {
		kind = 'x'
	}
	_, _ = hasher.Write([]byte{kind})

	hash, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}
	if err := binary.Write(hasher, binary.LittleEndian, hash); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
