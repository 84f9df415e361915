package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twig/internal/core/ports"
)

const NodeID graft.ID = "adapter.lockfile_store"

func init() {
	graft.Register(graft.Node[ports.LockfileStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockfileStore, error) {
			return NewStore(), nil
		},
	})
}
