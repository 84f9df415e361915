package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twig/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/gitexec"   //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/gogit"     //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/lockfile"  //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			lockfile.NodeID,
			cas.NodeID,
			fs.CopierNodeID,
			fs.HasherNodeID,
			gogit.NodeID,
			gitexec.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	manifests, err := graft.Dep[ports.ManifestStore](ctx)
	if err != nil {
		return nil, err
	}

	lockfiles, err := graft.Dep[ports.LockfileStore](ctx)
	if err != nil {
		return nil, err
	}

	records, err := graft.Dep[ports.InstalledStore](ctx)
	if err != nil {
		return nil, err
	}

	copier, err := graft.Dep[ports.TreeCopier](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.TreeHasher](ctx)
	if err != nil {
		return nil, err
	}

	native, err := graft.Dep[*gogit.Transport](ctx)
	if err != nil {
		return nil, err
	}

	execFactory, err := graft.Dep[gitexec.Factory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	a := New(manifests, lockfiles, records, copier, hasher, native, log, tracer)
	return a.WithTransport(domain.TransportExec, TransportFactory(execFactory)), nil
}
