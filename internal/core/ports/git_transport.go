package ports

import (
	"context"

	"go.trai.ch/twig/internal/core/domain"
)

// GitTransport is the boundary to git itself. Locations are passed with any git+ prefix removed.
//
//go:generate go run go.uber.org/mock/mockgen -source=git_transport.go -destination=mocks/mock_git_transport.go -package=mocks
type GitTransport interface {
	// ListRefs returns the refs advertised by the remote, including HEAD and peeled tag entries.
	ListRefs(ctx context.Context, url string) ([]domain.RemoteRef, error)

	// SyncMirror makes dir a bare mirror of url holding every remote ref.
	// It clones when dir does not exist and fetches otherwise.
	SyncMirror(ctx context.Context, url, dir string) error

	// Commits returns every commit reachable from the refs of the mirror at dir.
	Commits(ctx context.Context, dir string) ([]string, error)

	// Checkout writes the tree of commit from the mirror at dir into the empty directory dest.
	Checkout(ctx context.Context, dir, commit, dest string) error
}
