// Package app implements the application layer for twig.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/twig/internal/adapters/telemetry"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/twig/internal/engine/fetcher"
	"go.trai.ch/twig/internal/engine/graph"
	"go.trai.ch/twig/internal/engine/installer"
	"go.trai.ch/twig/internal/engine/reconciler"
	"go.trai.ch/twig/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// TransportFactory builds a git transport on first use.
type TransportFactory func() (ports.GitTransport, error)

// App represents the main application logic.
type App struct {
	manifests ports.ManifestStore
	lockfiles ports.LockfileStore
	records   ports.InstalledStore
	copier    ports.TreeCopier
	hasher    ports.TreeHasher
	logger    ports.Logger
	tracer    ports.Tracer
	registry  ports.RegistryResolver

	transports map[string]TransportFactory
}

// New creates a new App instance. native serves the "native" transport; other
// transports are added with WithTransport.
func New(
	manifests ports.ManifestStore,
	lockfiles ports.LockfileStore,
	records ports.InstalledStore,
	copier ports.TreeCopier,
	hasher ports.TreeHasher,
	native ports.GitTransport,
	log ports.Logger,
	tracer ports.Tracer,
) *App {
	return &App{
		manifests: manifests,
		lockfiles: lockfiles,
		records:   records,
		copier:    copier,
		hasher:    hasher,
		logger:    log,
		tracer:    tracer,
		transports: map[string]TransportFactory{
			domain.TransportNative: func() (ports.GitTransport, error) { return native, nil },
		},
	}
}

// WithTransport registers the transport selected by the given settings name.
func (a *App) WithTransport(name string, factory TransportFactory) *App {
	a.transports[name] = factory
	return a
}

// WithRegistry sets the resolver used for non-git specifiers.
func (a *App) WithRegistry(r ports.RegistryResolver) *App {
	a.registry = r
	return a
}

// LogOptions configures log output.
type LogOptions struct {
	JSON    bool
	Verbose bool
}

// ConfigureLogging applies opts when the logger supports them.
func (a *App) ConfigureLogging(opts LogOptions) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(opts.JSON)
	}
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(opts.Verbose)
	}
}

// InstallOptions configuration for the Install method. Zero values keep the manifest settings.
type InstallOptions struct {
	Concurrency int
	Transport   string
	Verify      bool
}

// InstallReport describes a finished install run.
type InstallReport struct {
	// Added lists the names given to the specifiers passed to Install.
	Added []string
	// Tree is the resolved dependency tree.
	Tree *domain.Tree
	// Result lists what changed on disk.
	Result installer.Result
	// Lockfile is the lockfile that was written.
	Lockfile *domain.Lockfile
}

// session holds the collaborators of one run. Mirrors are synced and refs are
// resolved at most once per session.
type session struct {
	layout   domain.Layout
	settings domain.Settings
	fetcher  *fetcher.Fetcher
	resolver *resolver.Resolver
}

// Install resolves the project in dir and brings twig_modules, the lockfile, and,
// when specs are given, the manifest in line with it.
// Nothing is written to the lockfile or manifest unless every package installed.
func (a *App) Install(ctx context.Context, dir string, specs []string, opts InstallOptions) (*InstallReport, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", dir)
	}

	m, err := a.loadProject(root, len(specs) > 0)
	if err != nil {
		return nil, err
	}

	settings := m.Settings.WithDefaults()
	if opts.Concurrency > 0 {
		settings.Concurrency = opts.Concurrency
	}
	if opts.Transport != "" {
		settings.Transport = opts.Transport
	}
	if opts.Verify {
		settings.VerifyContent = true
	}

	ctx, runID := telemetry.WithRunID(ctx)
	ctx, span := a.tracer.Start(ctx, "install")
	defer span.End()
	span.SetAttribute(telemetry.RunIDKey, runID)
	span.SetAttribute("project", m.Name)

	s, err := a.newSession(root, settings)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	report, err := a.install(ctx, s, m, specs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return report, nil
}

func (a *App) install(ctx context.Context, s *session, m *domain.Manifest, specs []string) (*InstallReport, error) {
	lock, err := a.lockfiles.Read(s.layout.LockfilePath())
	if err != nil {
		return nil, err
	}

	added, err := a.addDependencies(ctx, s, m, specs)
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder(s.resolver, s.fetcher, a.manifests, a.registry, a.logger, graph.Options{
		Concurrency: s.settings.Concurrency,
		Refresh:     added,
	})
	tree, err := builder.Build(ctx, *m, lock)
	if err != nil {
		return nil, err
	}

	inst := installer.New(a.records, a.copier, a.hasher, a.logger, a.tracer, installer.Options{
		Concurrency:   s.settings.Concurrency,
		VerifyContent: s.settings.VerifyContent,
	})
	result, err := inst.Install(ctx, tree, s.layout.ModulesDir())
	if err != nil {
		return nil, err
	}

	next := reconciler.Reconcile(lock, tree)

	if len(added) > 0 {
		if err := a.manifests.Save(s.layout.Root(), m); err != nil {
			return nil, err
		}
	}
	if err := a.lockfiles.Write(s.layout.LockfilePath(), next); err != nil {
		return nil, err
	}

	return &InstallReport{Added: added, Tree: tree, Result: result, Lockfile: next}, nil
}

// addDependencies records each specifier in m and returns the names they were given.
// A git package is named after its own manifest, falling back to the repository name.
func (a *App) addDependencies(ctx context.Context, s *session, m *domain.Manifest, specs []string) ([]string, error) {
	names := make([]string, 0, len(specs))
	for _, raw := range specs {
		if !domain.IsGitSpecifier(raw) {
			return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedSpecifier, "only git specifiers can be added"),
				"specifier", raw)
		}

		spec, err := domain.ParseSpecifier(raw)
		if err != nil {
			return nil, err
		}

		resolved, err := s.resolver.Resolve(ctx, spec)
		if err != nil {
			return nil, err
		}
		tree, err := s.fetcher.Fetch(ctx, spec.Location, resolved.Commit)
		if err != nil {
			return nil, err
		}

		name := spec.DefaultName()
		pkg, err := a.manifests.Load(tree)
		switch {
		case errors.Is(err, domain.ErrManifestNotFound):
		case err != nil:
			return nil, err
		case domain.ValidatePackageName(pkg.Name) == nil:
			name = pkg.Name
		}
		if err := domain.ValidatePackageName(name); err != nil {
			return nil, err
		}

		m.SetDependency(name, spec.String())
		names = append(names, name)
		a.logger.Debug("adding " + name + " from " + spec.String())
	}
	return names, nil
}

// Resolve returns the commit raw names, without installing anything.
func (a *App) Resolve(ctx context.Context, dir, raw string) (domain.ResolvedCommit, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return domain.ResolvedCommit{}, zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", dir)
	}

	spec, err := domain.ParseSpecifier(raw)
	if err != nil {
		return domain.ResolvedCommit{}, err
	}

	m, err := a.loadProject(root, true)
	if err != nil {
		return domain.ResolvedCommit{}, err
	}

	s, err := a.newSession(root, m.Settings.WithDefaults())
	if err != nil {
		return domain.ResolvedCommit{}, err
	}

	ctx, runID := telemetry.WithRunID(ctx)
	ctx, span := a.tracer.Start(ctx, "resolve.command")
	defer span.End()
	span.SetAttribute(telemetry.RunIDKey, runID)

	return s.resolver.Resolve(ctx, spec)
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	Mirrors   bool
	Checkouts bool
	Modules   bool
}

// Clean removes caches and installed packages based on the provided options.
func (a *App) Clean(_ context.Context, dir string, options CleanOptions) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve project directory"), "dir", dir)
	}

	m, err := a.loadProject(root, true)
	if err != nil {
		return err
	}
	layout := domain.NewLayout(root, m.Settings.WithDefaults().CacheDir)

	var errs error

	remove := func(path string, name string) {
		a.logger.Info("removing " + name + "...")
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove "+name), "path", path))
			return
		}
		a.logger.Info("removed " + name)
	}

	if options.Mirrors {
		remove(layout.MirrorsDir(), "repository mirrors")
	}
	if options.Checkouts {
		remove(layout.CheckoutsDir(), "checkouts")
	}
	if options.Modules {
		remove(layout.ModulesDir(), "installed packages")
	}

	return errs
}

// loadProject reads the manifest in root. When lenient is set, a missing manifest
// yields an empty one named after the directory.
func (a *App) loadProject(root string, lenient bool) (*domain.Manifest, error) {
	m, err := a.manifests.Load(root)
	switch {
	case err == nil:
		return m, nil
	case lenient && errors.Is(err, domain.ErrManifestNotFound):
		return &domain.Manifest{Name: filepath.Base(root)}, nil
	default:
		return nil, err
	}
}

func (a *App) newSession(root string, settings domain.Settings) (*session, error) {
	factory, ok := a.transports[settings.Transport]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownTransport, "transport must be native or exec"),
			"transport", settings.Transport)
	}
	transport, err := factory()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to set up git transport"), "transport", settings.Transport)
	}

	layout := domain.NewLayout(root, settings.CacheDir)
	f := fetcher.New(transport, layout, a.logger, a.tracer, fetcher.Options{
		Retries:    settings.FetchRetries,
		RetryDelay: settings.RetryDelay,
	})

	return &session{
		layout:   layout,
		settings: settings,
		fetcher:  f,
		resolver: resolver.New(f, a.tracer, settings.MinAbbrevLength),
	}, nil
}
