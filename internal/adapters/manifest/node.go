package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twig/internal/core/ports"
)

const NodeID graft.ID = "adapter.manifest_store"

func init() {
	graft.Register(graft.Node[ports.ManifestStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ManifestStore, error) {
			return NewStore(), nil
		},
	})
}
