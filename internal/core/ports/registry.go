package ports

import (
	"context"

	"go.trai.ch/twig/internal/core/domain"
)

// RegistryResolver resolves dependencies that are not git specifiers.
// The returned node must carry Version and SourceTreePath.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type RegistryResolver interface {
	ResolveRegistrySpecifier(ctx context.Context, name, specifier string) (*domain.PackageNode, error)
}
