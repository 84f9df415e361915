// Package installer materializes a resolved dependency tree into twig_modules directories.
package installer

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// digestIgnores are left out of content digests: the record itself and nested installs.
var digestIgnores = []string{domain.InstalledRecordName, domain.ModulesDirName}

// Options tunes an Installer.
type Options struct {
	// Concurrency bounds the number of packages installed at once.
	Concurrency int
	// VerifyContent re-hashes an installed package before skipping it.
	VerifyContent bool
}

// Result lists what an install run changed, as slash-separated install paths.
type Result struct {
	Installed []string
	Skipped   []string
	Removed   []string
}

// Changed reports whether the run touched the file system.
func (r Result) Changed() bool {
	return len(r.Installed) > 0 || len(r.Removed) > 0
}

// Installer copies fetched source trees into place.
type Installer struct {
	records ports.InstalledStore
	copier  ports.TreeCopier
	hasher  ports.TreeHasher
	logger  ports.Logger
	tracer  ports.Tracer
	opts    Options
	now     func() time.Time
}

// New creates an Installer.
func New(
	records ports.InstalledStore,
	copier ports.TreeCopier,
	hasher ports.TreeHasher,
	logger ports.Logger,
	tracer ports.Tracer,
	opts Options,
) *Installer {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Installer{
		records: records,
		copier:  copier,
		hasher:  hasher,
		logger:  logger,
		tracer:  tracer,
		opts:    opts,
		now:     time.Now,
	}
}

// job is one package waiting to be installed.
type job struct {
	path   string
	target string
	node   *domain.PackageNode
}

// pruneTarget is a modules directory to clear of packages outside wanted.
type pruneTarget struct {
	dir    string
	prefix string
	wanted []*domain.PackageNode
}

// collector gathers results from concurrent jobs.
type collector struct {
	mu     sync.Mutex
	result Result
	prunes []pruneTarget
}

func (c *collector) add(list *[]string, p string) {
	c.mu.Lock()
	*list = append(*list, p)
	c.mu.Unlock()
}

func (c *collector) pruneLater(t pruneTarget) {
	c.mu.Lock()
	c.prunes = append(c.prunes, t)
	c.mu.Unlock()
}

// Install brings modulesRoot in line with tree. Parents are installed before their children,
// since replacing a package also replaces its nested modules directory.
// Extraneous packages are removed only once every package is in place.
func (i *Installer) Install(ctx context.Context, tree *domain.Tree, modulesRoot string) (Result, error) {
	c := &collector{}

	if err := os.MkdirAll(modulesRoot, domain.DirPerm); err != nil {
		return Result{}, errors.Join(domain.ErrInstallFailed,
			zerr.With(zerr.Wrap(err, "failed to create modules directory"), "path", modulesRoot))
	}
	c.pruneLater(pruneTarget{dir: modulesRoot, wanted: tree.Dependencies})

	level := make([]job, 0, len(tree.Dependencies))
	for _, n := range tree.Dependencies {
		level = append(level, job{path: n.Name, target: filepath.Join(modulesRoot, n.Name), node: n})
	}

	for len(level) > 0 {
		if err := i.installLevel(ctx, level, c); err != nil {
			return Result{}, err
		}

		var next []job
		for _, j := range level {
			for _, child := range j.node.Children {
				next = append(next, job{
					path:   j.path + "/" + child.Name,
					target: filepath.Join(j.target, domain.ModulesDirName, child.Name),
					node:   child,
				})
			}
		}
		level = next
	}

	for _, t := range c.prunes {
		if err := i.prune(t, c); err != nil {
			return Result{}, err
		}
	}

	slices.Sort(c.result.Installed)
	slices.Sort(c.result.Skipped)
	slices.Sort(c.result.Removed)
	return c.result, nil
}

func (i *Installer) installLevel(ctx context.Context, level []job, c *collector) error {
	var g errgroup.Group
	g.SetLimit(i.opts.Concurrency)
	var failed atomic.Bool

	for _, j := range level {
		g.Go(func() error {
			if failed.Load() {
				return nil
			}
			if err := i.installJob(ctx, j, c); err != nil {
				failed.Store(true)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func (i *Installer) installJob(ctx context.Context, j job, c *collector) error {
	if err := ctx.Err(); err != nil {
		return errors.Join(domain.ErrInstallAborted, err)
	}

	_, span := i.tracer.Start(ctx, "install.package")
	defer span.End()
	span.SetAttribute("path", j.path)
	span.SetAttribute("version", j.node.ID())
	if j.node.Resolved.Commit != "" {
		span.SetAttribute("commit", j.node.Resolved.Commit)
	}

	installed, err := i.install(j.node, j.target)
	if err != nil {
		span.RecordError(err)
		return errors.Join(domain.ErrInstallFailed,
			zerr.With(zerr.With(zerr.Wrap(err, "failed to install package"), "package", j.path), "version", j.node.ID()))
	}
	span.SetAttribute("installed", installed)

	if installed {
		c.add(&c.result.Installed, j.path)
	} else {
		c.add(&c.result.Skipped, j.path)
	}

	c.pruneLater(pruneTarget{dir: filepath.Join(j.target, domain.ModulesDirName), prefix: j.path, wanted: j.node.Children})
	return nil
}

// install places node at target unless the same version is already there.
// It reports whether the directory was replaced.
func (i *Installer) install(node *domain.PackageNode, target string) (bool, error) {
	current, err := i.records.Get(target)
	if errors.Is(err, domain.ErrRecordReadFailed) {
		i.logger.Warn("ignoring unreadable install record in " + target)
		current = nil
	} else if err != nil {
		return false, err
	}

	if current != nil && current.Version == node.ID() {
		upToDate, err := i.upToDate(current, target)
		if err != nil {
			return false, err
		}
		if upToDate {
			return false, nil
		}
		i.logger.Warn("contents of " + target + " changed since install, reinstalling")
	}

	return true, i.replace(node, target)
}

// upToDate checks installed content against its recorded digest when verification is enabled.
func (i *Installer) upToDate(current *domain.InstalledRecord, target string) (bool, error) {
	if !i.opts.VerifyContent {
		return true, nil
	}
	if current.Digest == "" {
		return false, nil
	}
	digest, err := i.hasher.HashTree(target, digestIgnores)
	if err != nil {
		return false, err
	}
	return digest == current.Digest, nil
}

// replace stages a full copy of the package beside target and swaps it in.
// The old content survives any failure before the final rename, and is restored if that fails.
func (i *Installer) replace(node *domain.PackageNode, target string) error {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", parent)
	}

	staging, err := os.MkdirTemp(parent, "."+node.Name+".staging-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create staging directory"), "path", parent)
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	staged := filepath.Join(staging, "package")
	if node.SourceTreePath != "" {
		if err := i.copier.CopyTree(node.SourceTreePath, staged); err != nil {
			return err
		}
	} else if err := os.Mkdir(staged, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create package directory"), "path", staged)
	}

	digest, err := i.hasher.HashTree(staged, digestIgnores)
	if err != nil {
		return err
	}
	if err := i.records.Put(staged, domain.NewInstalledRecord(node, digest, i.now())); err != nil {
		return err
	}

	backup := filepath.Join(staging, "backup")
	hadOld := false
	if _, err := os.Lstat(target); err == nil {
		if err := os.Rename(target, backup); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to move old package aside"), "path", target)
		}
		hadOld = true
	}

	if err := os.Rename(staged, target); err != nil {
		if hadOld {
			if restoreErr := os.Rename(backup, target); restoreErr != nil {
				i.logger.Warn("failed to restore previous contents of " + target)
			}
		}
		return zerr.With(zerr.Wrap(err, "failed to move package into place"), "path", target)
	}

	i.logger.Debug("installed " + node.ID() + " into " + target)
	return nil
}

// prune removes entries of t.dir that do not belong to t.wanted, along with abandoned
// staging directories. t.prefix is the install path owning t.dir.
func (i *Installer) prune(t pruneTarget, c *collector) error {
	modulesDir := t.dir
	entries, err := os.ReadDir(modulesDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Join(domain.ErrInstallFailed,
			zerr.With(zerr.Wrap(err, "failed to read modules directory"), "path", modulesDir))
	}

	keep := make(map[string]bool, len(t.wanted))
	for _, n := range t.wanted {
		keep[n.Name] = true
	}

	for _, e := range entries {
		name := e.Name()
		staging := strings.HasPrefix(name, ".") && strings.Contains(name, ".staging-")
		if keep[name] || (strings.HasPrefix(name, ".") && !staging) {
			continue
		}

		p := filepath.Join(modulesDir, name)
		if err := os.RemoveAll(p); err != nil {
			return errors.Join(domain.ErrInstallFailed,
				zerr.With(zerr.Wrap(err, "failed to remove extraneous package"), "path", p))
		}
		if !staging {
			c.add(&c.result.Removed, path.Join(t.prefix, name))
			i.logger.Debug("removed extraneous " + p)
		}
	}
	return nil
}
