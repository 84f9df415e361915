package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twig/internal/core/ports"
)

const NodeID graft.ID = "adapter.installed_store"

func init() {
	graft.Register(graft.Node[ports.InstalledStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.InstalledStore, error) {
			return NewStore(), nil
		},
	})
}
