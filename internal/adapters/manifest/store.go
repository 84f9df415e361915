// Package manifest reads and writes twig.yaml and twig.toml manifests.
package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/twig/internal/adapters/fs"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ManifestStore = (*Store)(nil)

// Store implements ports.ManifestStore on the file system.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the manifest in dir, preferring twig.yaml over twig.toml.
func (s *Store) Load(dir string) (*domain.Manifest, error) {
	for _, name := range []string{domain.ManifestFileName, domain.ManifestTOMLFileName} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path) //nolint:gosec // Path is built from the project directory
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Join(domain.ErrManifestReadFailed,
				zerr.With(zerr.Wrap(err, "failed to read manifest"), "path", path))
		}
		return Parse(path, data)
	}

	return nil, zerr.With(zerr.Wrap(domain.ErrManifestNotFound, "directory holds no twig.yaml or twig.toml"), "dir", dir)
}

// Parse decodes manifest data. The format is chosen by the extension of path.
func Parse(path string, data []byte) (*domain.Manifest, error) {
	var file File
	var err error
	if filepath.Ext(path) == ".toml" {
		err = toml.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, errors.Join(domain.ErrManifestParseFailed,
			zerr.With(zerr.Wrap(err, "failed to parse manifest"), "path", path))
	}

	settings, err := toSettings(file.Settings)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid settings"), "path", path)
	}

	return &domain.Manifest{
		Name:         file.Name,
		Version:      file.Version,
		Dependencies: file.Dependencies,
		Settings:     settings,
		Path:         path,
	}, nil
}

// Save writes m to m.Path, or to a new twig.yaml in dir when m.Path is empty.
func (s *Store) Save(dir string, m *domain.Manifest) error {
	path := m.Path
	if path == "" {
		path = filepath.Join(dir, domain.ManifestFileName)
	}

	data, err := Encode(path, m)
	if err != nil {
		return err
	}

	if err := fs.WriteFileAtomic(path, data, domain.FilePerm); err != nil {
		return errors.Join(domain.ErrManifestWriteFailed, err)
	}
	m.Path = path
	return nil
}

// Encode renders m in the format selected by the extension of path.
func Encode(path string, m *domain.Manifest) ([]byte, error) {
	file := File{
		Name:         m.Name,
		Version:      m.Version,
		Dependencies: m.Dependencies,
		Settings:     fromSettings(m.Settings),
	}

	var buf bytes.Buffer
	var err error
	if filepath.Ext(path) == ".toml" {
		err = toml.NewEncoder(&buf).Encode(file)
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(file)
		if err == nil {
			err = enc.Close()
		}
	}
	if err != nil {
		return nil, errors.Join(domain.ErrManifestWriteFailed,
			zerr.With(zerr.Wrap(err, "failed to encode manifest"), "path", path))
	}
	return buf.Bytes(), nil
}

func toSettings(dto *SettingsDTO) (domain.Settings, error) {
	if dto == nil {
		return domain.Settings{}, nil
	}

	s := domain.Settings{
		Concurrency:     dto.Concurrency,
		FetchRetries:    dto.FetchRetries,
		MinAbbrevLength: dto.MinAbbrevLength,
		Transport:       dto.Transport,
		VerifyContent:   dto.VerifyContent,
		CacheDir:        dto.CacheDir,
	}

	if dto.RetryDelay != "" {
		d, err := time.ParseDuration(dto.RetryDelay)
		if err != nil {
			return domain.Settings{}, errors.Join(domain.ErrManifestParseFailed,
				zerr.With(zerr.Wrap(err, "invalid retryDelay"), "value", dto.RetryDelay))
		}
		s.RetryDelay = d
	}

	switch s.Transport {
	case "", domain.TransportNative, domain.TransportExec:
	default:
		return domain.Settings{}, zerr.With(zerr.Wrap(domain.ErrManifestParseFailed, "transport must be native or exec"),
			"value", s.Transport)
	}

	return s, nil
}

func fromSettings(s domain.Settings) *SettingsDTO {
	if s == (domain.Settings{}) {
		return nil
	}
	dto := &SettingsDTO{
		Concurrency:     s.Concurrency,
		FetchRetries:    s.FetchRetries,
		MinAbbrevLength: s.MinAbbrevLength,
		Transport:       s.Transport,
		VerifyContent:   s.VerifyContent,
		CacheDir:        s.CacheDir,
	}
	if s.RetryDelay > 0 {
		dto.RetryDelay = s.RetryDelay.String()
	}
	return dto
}
