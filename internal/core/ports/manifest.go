package ports

import "go.trai.ch/twig/internal/core/domain"

// ManifestStore reads and writes package manifests.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestStore interface {
	// Load reads the manifest in dir.
	// It returns domain.ErrManifestNotFound when dir holds none.
	Load(dir string) (*domain.Manifest, error)

	// Save writes m back to m.Path, or to a new twig.yaml in dir when m.Path is empty.
	Save(dir string, m *domain.Manifest) error
}
