// Package cas stores the identity record kept inside every installed package directory.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	twigfs "go.trai.ch/twig/internal/adapters/fs"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InstalledStore = (*Store)(nil)

// Store implements ports.InstalledStore with one JSON file per package directory.
type Store struct {
	filename string
}

// NewStore creates a Store using domain.InstalledRecordName.
func NewStore() *Store {
	return &Store{filename: domain.InstalledRecordName}
}

// Path returns the record file inside dir.
func (s *Store) Path(dir string) string {
	return filepath.Join(dir, s.filename)
}

// Get retrieves the record of the package installed in dir.
func (s *Store) Get(dir string) (*domain.InstalledRecord, error) {
	path := s.Path(dir)

	//nolint:gosec // Path is built from the modules directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(domain.ErrRecordReadFailed,
			zerr.With(zerr.Wrap(err, "failed to read installed record"), "path", path))
	}

	var rec domain.InstalledRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(domain.ErrRecordReadFailed,
			zerr.With(zerr.Wrap(err, "failed to unmarshal installed record"), "path", path))
	}
	return &rec, nil
}

// Put writes rec into dir.
func (s *Store) Put(dir string, rec domain.InstalledRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrRecordWriteFailed, zerr.Wrap(err, "failed to marshal installed record"))
	}
	data = append(data, '\n')

	if err := twigfs.WriteFileAtomic(s.Path(dir), data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrRecordWriteFailed, err)
	}
	return nil
}
