package ports

import "go.trai.ch/twig/internal/core/domain"

// LockfileStore persists lockfiles.
//
//go:generate go run go.uber.org/mock/mockgen -source=lockfile.go -destination=mocks/mock_lockfile.go -package=mocks
type LockfileStore interface {
	// Read loads the lockfile at path.
	// Returns nil, nil if it does not exist.
	Read(path string) (*domain.Lockfile, error)

	// Write replaces the lockfile at path atomically.
	Write(path string, lock *domain.Lockfile) error
}
