package gitexec

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twig/internal/adapters/logger"
	"go.trai.ch/twig/internal/core/ports"
)

const NodeID graft.ID = "adapter.git.exec"

// Factory builds the exec transport on demand, since git may be missing when it is never selected.
type Factory func() (ports.GitTransport, error)

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func() (ports.GitTransport, error) {
				return NewTransport(log)
			}, nil
		},
	})
}
