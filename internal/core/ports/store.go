package ports

import "go.trai.ch/twig/internal/core/domain"

// InstalledStore reads and writes the record kept inside an installed package directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type InstalledStore interface {
	// Get retrieves the record of the package installed in dir.
	// Returns nil, nil if dir holds no record.
	Get(dir string) (*domain.InstalledRecord, error)

	// Put writes the record into dir.
	Put(dir string, rec domain.InstalledRecord) error
}
