// Package fetcher materializes the source tree of resolved commits from per-location mirrors.
package fetcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options tunes the retry policy for remote operations.
type Options struct {
	// Retries is the number of attempts per remote operation.
	Retries int
	// RetryDelay is the delay before the second attempt. It doubles after every failure.
	RetryDelay time.Duration
}

// Fetcher owns the mirror and checkout caches for one install run.
// Mirrors are synced at most once per Fetcher; checkouts are immutable and reused across runs.
type Fetcher struct {
	transport ports.GitTransport
	layout    domain.Layout
	logger    ports.Logger
	tracer    ports.Tracer
	opts      Options

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	synced map[string]bool
}

// New creates a Fetcher.
func New(
	transport ports.GitTransport,
	layout domain.Layout,
	logger ports.Logger,
	tracer ports.Tracer,
	opts Options,
) *Fetcher {
	if opts.Retries < 1 {
		opts.Retries = 1
	}
	return &Fetcher{
		transport: transport,
		layout:    layout,
		logger:    logger,
		tracer:    tracer,
		opts:      opts,
		locks:     make(map[string]*sync.Mutex),
		synced:    make(map[string]bool),
	}
}

// ListRefs returns the refs advertised by the remote at location.
func (f *Fetcher) ListRefs(ctx context.Context, location string) ([]domain.RemoteRef, error) {
	var refs []domain.RemoteRef
	err := f.retry(ctx, "list refs", location, func(ctx context.Context) error {
		var err error
		refs, err = f.transport.ListRefs(ctx, domain.TransportURL(location))
		return err
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}

// Commits returns every commit known to the mirror of location, syncing it first if this
// Fetcher has not done so yet.
func (f *Fetcher) Commits(ctx context.Context, location string) ([]string, error) {
	unlock := f.lock(location)
	defer unlock()

	dir, err := f.syncMirror(ctx, location)
	if err != nil {
		return nil, err
	}

	commits, err := f.transport.Commits(ctx, dir)
	if err != nil {
		return nil, errors.Join(domain.ErrFetchFailed,
			zerr.With(zerr.Wrap(err, "failed to list mirror commits"), "location", location))
	}
	return commits, nil
}

// Fetch returns a directory holding the tree of commit from location.
func (f *Fetcher) Fetch(ctx context.Context, location, commit string) (string, error) {
	ctx, span := f.tracer.Start(ctx, "fetch")
	defer span.End()
	span.SetAttribute("location", location)
	span.SetAttribute("commit", commit)

	path, err := f.fetch(ctx, location, commit)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return path, nil
}

func (f *Fetcher) fetch(ctx context.Context, location, commit string) (string, error) {
	unlock := f.lock(location)
	defer unlock()

	dest := f.layout.CheckoutPath(location, commit)
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		f.logger.Debug("reusing checkout of " + location + "#" + commit)
		return dest, nil
	}

	dir, err := f.syncMirror(ctx, location)
	if err != nil {
		return "", err
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create checkout directory"), "path", parent)
	}

	staging, err := os.MkdirTemp(parent, ".staging-*")
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create staging directory"), "path", parent)
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	if err := f.transport.Checkout(ctx, dir, commit, staging); err != nil {
		err = zerr.Wrap(err, "commit cannot be checked out from the mirror; run `twig clean --mirrors` if the remote history was rewritten")
		return "", errors.Join(domain.ErrCommitNotFound,
			zerr.With(zerr.With(err, "location", location), "commit", commit))
	}

	if err := os.Rename(staging, dest); err != nil {
		// Another process may have placed the same immutable checkout first.
		if info, statErr := os.Stat(dest); statErr == nil && info.IsDir() {
			return dest, nil
		}
		return "", zerr.With(zerr.Wrap(err, "failed to move checkout into place"), "path", dest)
	}

	return dest, nil
}

// syncMirror creates or updates the mirror of location. The caller holds the location lock.
func (f *Fetcher) syncMirror(ctx context.Context, location string) (string, error) {
	key := domain.LocationKey(location)
	dir := f.layout.MirrorPath(location)

	f.mu.Lock()
	done := f.synced[key]
	f.mu.Unlock()
	if done {
		return dir, nil
	}

	if err := os.MkdirAll(f.layout.MirrorsDir(), domain.DirPerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to create mirrors directory"), "path", f.layout.MirrorsDir())
	}

	f.logger.Debug("syncing mirror of " + location)
	err := f.retry(ctx, "sync mirror", location, func(ctx context.Context) error {
		return f.transport.SyncMirror(ctx, domain.TransportURL(location), dir)
	})
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.synced[key] = true
	f.mu.Unlock()

	return dir, nil
}

// lock serializes mirror operations on one location.
func (f *Fetcher) lock(location string) func() {
	key := domain.LocationKey(location)

	f.mu.Lock()
	l, ok := f.locks[key]
	if !ok {
		l = &sync.Mutex{}
		f.locks[key] = l
	}
	f.mu.Unlock()

	l.Lock()
	return l.Unlock
}
