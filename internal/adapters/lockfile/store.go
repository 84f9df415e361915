// Package lockfile reads and writes twig-lock.json.
package lockfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	twigfs "go.trai.ch/twig/internal/adapters/fs"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockfileStore = (*Store)(nil)

// Store implements ports.LockfileStore on the file system.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Read loads the lockfile at path. A missing file yields nil, nil.
func (s *Store) Read(path string) (*domain.Lockfile, error) {
	//nolint:gosec // Path is built from the project directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(domain.ErrLockfileReadFailed,
			zerr.With(zerr.Wrap(err, "failed to read lockfile"), "path", path))
	}

	var lock domain.Lockfile
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Join(domain.ErrLockfileReadFailed,
			zerr.With(zerr.Wrap(err, "failed to parse lockfile"), "path", path))
	}
	if lock.LockfileVersion > domain.LockfileVersion {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrLockfileReadFailed, "lockfile was written by a newer twig"),
			"path", path), "lockfile_version", lock.LockfileVersion)
	}
	if lock.Dependencies == nil {
		lock.Dependencies = make(map[string]*domain.LockEntry)
	}
	return &lock, nil
}

// Write replaces the lockfile at path atomically.
func (s *Store) Write(path string, lock *domain.Lockfile) error {
	data, err := Encode(lock)
	if err != nil {
		return err
	}
	if err := twigfs.WriteFileAtomic(path, data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrLockfileWriteFailed, err)
	}
	return nil
}

// Encode renders lock as indented JSON with sorted keys and a trailing newline.
// Equal lockfiles always encode to identical bytes.
func Encode(lock *domain.Lockfile) ([]byte, error) {
	out := *lock
	if out.Dependencies == nil {
		out.Dependencies = make(map[string]*domain.LockEntry)
	}
	if out.LockfileVersion == 0 {
		out.LockfileVersion = domain.LockfileVersion
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, errors.Join(domain.ErrLockfileWriteFailed, zerr.Wrap(err, "failed to encode lockfile"))
	}
	return buf.Bytes(), nil
}
