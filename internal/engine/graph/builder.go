// Package graph builds the resolved dependency tree of a project.
package graph

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Resolver resolves git specifiers to commits.
type Resolver interface {
	Resolve(ctx context.Context, spec domain.Specifier) (domain.ResolvedCommit, error)
}

// Fetcher materializes the tree of a commit.
type Fetcher interface {
	Fetch(ctx context.Context, location, commit string) (string, error)
}

// Options tunes a Builder.
type Options struct {
	// Concurrency bounds the number of packages resolved at once.
	Concurrency int
	// Refresh names top-level dependencies that are re-resolved even when the lockfile
	// still matches their specifier.
	Refresh []string
}

// Builder expands a manifest into a dependency tree, one breadth-first level at a time.
type Builder struct {
	resolver  Resolver
	fetcher   Fetcher
	manifests ports.ManifestStore
	registry  ports.RegistryResolver
	logger    ports.Logger
	opts      Options
}

// NewBuilder creates a Builder. registry may be nil, in which case non-git specifiers fail.
func NewBuilder(
	resolver Resolver,
	fetcher Fetcher,
	manifests ports.ManifestStore,
	registry ports.RegistryResolver,
	logger ports.Logger,
	opts Options,
) *Builder {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Builder{
		resolver:  resolver,
		fetcher:   fetcher,
		manifests: manifests,
		registry:  registry,
		logger:    logger,
		opts:      opts,
	}
}

// task is one dependency waiting to be resolved.
type task struct {
	path      string
	name      string
	raw       string
	parent    *domain.PackageNode
	lock      *domain.LockEntry
	ancestors []string
}

// Build resolves every dependency of root. lock may be nil.
// The first failure is returned; siblings already running finish, but nothing new starts.
func (b *Builder) Build(ctx context.Context, root domain.Manifest, lock *domain.Lockfile) (*domain.Tree, error) {
	tree := &domain.Tree{Root: root}

	level := make([]task, 0, len(root.Dependencies))
	for _, name := range root.DependencyNames() {
		t := task{path: name, name: name, raw: root.Dependencies[name]}
		if e, ok := lock.Entry(name); ok && !slices.Contains(b.opts.Refresh, name) {
			t.lock = e
		}
		level = append(level, t)
	}

	for len(level) > 0 {
		nodes, err := b.buildLevel(ctx, level)
		if err != nil {
			return nil, err
		}

		var next []task
		for i, t := range level {
			node := nodes[i]
			if t.parent == nil {
				tree.Dependencies = append(tree.Dependencies, node)
			} else {
				t.parent.Children = append(t.parent.Children, node)
			}
			next = append(next, b.childTasks(t, node)...)
		}
		level = next
	}

	tree.SortDependencies()
	return tree, nil
}

func (b *Builder) buildLevel(ctx context.Context, level []task) ([]*domain.PackageNode, error) {
	nodes := make([]*domain.PackageNode, len(level))

	var g errgroup.Group
	g.SetLimit(b.opts.Concurrency)
	var failed atomic.Bool

	for i, t := range level {
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			node, err := b.buildNode(ctx, t)
			if err != nil {
				failed.Store(true)
				return zerr.With(zerr.Wrap(err, "failed to resolve dependency"), "dependency", t.path)
			}
			nodes[i] = node
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (b *Builder) buildNode(ctx context.Context, t task) (*domain.PackageNode, error) {
	if err := domain.ValidatePackageName(t.name); err != nil {
		return nil, err
	}

	if !domain.IsGitSpecifier(t.raw) {
		return b.buildRegistryNode(ctx, t)
	}

	spec, err := domain.ParseSpecifier(t.raw)
	if err != nil {
		return nil, err
	}

	node := &domain.PackageNode{Name: t.name, Specifier: spec}

	if commit, ok := lockedCommit(t.lock, spec); ok {
		node.Resolved = domain.ResolvedCommit{Location: spec.Location, Ref: spec.Ref, Commit: commit}
		node.Locked = true
	} else {
		node.Resolved, err = b.resolver.Resolve(ctx, spec)
		if err != nil {
			return nil, err
		}
	}

	node.SourceTreePath, err = b.fetcher.Fetch(ctx, spec.Location, node.Resolved.Commit)
	if err != nil {
		return nil, err
	}

	if err := b.loadManifest(node); err != nil {
		return nil, err
	}

	state := "resolved"
	if node.Locked {
		state = "locked"
	}
	b.logger.Debug(state + " " + t.path + " to " + node.ID())

	return node, nil
}

func (b *Builder) buildRegistryNode(ctx context.Context, t task) (*domain.PackageNode, error) {
	if b.registry == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSpecifier, "only git specifiers can be installed"), "specifier", t.raw)
	}

	node, err := b.registry.ResolveRegistrySpecifier(ctx, t.name, t.raw)
	if err != nil {
		return nil, err
	}
	node.Name = t.name
	node.Specifier = domain.RegistrySpecifier(t.raw)
	node.Registry = true

	if node.Manifest.Name == "" && node.SourceTreePath != "" {
		if err := b.loadManifest(node); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// loadManifest reads the package's own manifest. Packages without one have no dependencies.
func (b *Builder) loadManifest(node *domain.PackageNode) error {
	m, err := b.manifests.Load(node.SourceTreePath)
	switch {
	case errors.Is(err, domain.ErrManifestNotFound):
		node.Manifest = domain.Manifest{Name: node.Name}
	case err != nil:
		return err
	default:
		node.Manifest = *m
	}
	return nil
}

// childTasks queues the dependencies of node unless node repeats an ancestor.
func (b *Builder) childTasks(t task, node *domain.PackageNode) []task {
	key := node.Name + "@" + node.ID()
	if slices.Contains(t.ancestors, key) {
		b.logger.Debug("not expanding " + t.path + ": it repeats an ancestor")
		return nil
	}

	ancestors := append(slices.Clone(t.ancestors), key)

	// Nested lock entries only apply while the parent still has its locked identity.
	var parentLock *domain.LockEntry
	if t.lock != nil && t.lock.Version == node.ID() {
		parentLock = t.lock
	}

	names := node.Manifest.DependencyNames()
	tasks := make([]task, 0, len(names))
	for _, name := range names {
		child := task{
			path:      t.path + "/" + name,
			name:      name,
			raw:       node.Manifest.Dependencies[name],
			parent:    node,
			ancestors: ancestors,
		}
		if e, ok := parentLock.Child(name); ok {
			child.lock = e
		}
		tasks = append(tasks, child)
	}
	return tasks
}

// lockedCommit returns the locked commit when the entry was produced from the same specifier.
func lockedCommit(e *domain.LockEntry, spec domain.Specifier) (string, bool) {
	if e == nil || e.From != spec.String() {
		return "", false
	}
	location, commit, ok := domain.SplitID(e.Version)
	if !ok || domain.LocationKey(location) != domain.LocationKey(spec.Location) {
		return "", false
	}
	return commit, true
}
