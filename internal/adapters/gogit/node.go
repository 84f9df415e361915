package gogit

import (
	"context"

	"github.com/grindlemire/graft"
)

const NodeID graft.ID = "adapter.git.native"

func init() {
	graft.Register(graft.Node[*Transport]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Transport, error) {
			return NewTransport(), nil
		},
	})
}
