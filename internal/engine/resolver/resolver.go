// Package resolver turns git specifiers into immutable commit identities.
package resolver

import (
	"context"
	"strings"
	"sync"

	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Source is what the resolver needs from the fetcher.
type Source interface {
	// ListRefs returns the refs advertised by the remote at location.
	ListRefs(ctx context.Context, location string) ([]domain.RemoteRef, error)
	// Commits returns every commit held by the synced mirror of location.
	Commits(ctx context.Context, location string) ([]string, error)
}

// Resolver resolves specifiers for the lifetime of one install run.
// Results are memoized per (location, ref) and never persisted.
type Resolver struct {
	source          Source
	tracer          ports.Tracer
	minAbbrevLength int

	requestGroup singleflight.Group

	mu    sync.RWMutex
	cache map[string]domain.ResolvedCommit
	refs  map[string][]domain.RemoteRef
}

// New creates a Resolver. minAbbrevLength below 1 selects domain.DefaultMinAbbrevLength.
func New(source Source, tracer ports.Tracer, minAbbrevLength int) *Resolver {
	if minAbbrevLength < 1 {
		minAbbrevLength = domain.DefaultMinAbbrevLength
	}
	return &Resolver{
		source:          source,
		tracer:          tracer,
		minAbbrevLength: minAbbrevLength,
		cache:           make(map[string]domain.ResolvedCommit),
		refs:            make(map[string][]domain.RemoteRef),
	}
}

// Resolve returns the commit spec names.
func (r *Resolver) Resolve(ctx context.Context, spec domain.Specifier) (domain.ResolvedCommit, error) {
	key := domain.LocationKey(spec.Location) + "#" + spec.Ref.String()

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return withLocation(cached, spec), nil
	}

	result, err, _ := r.requestGroup.Do(key, func() (any, error) {
		ctx, span := r.tracer.Start(ctx, "resolve")
		defer span.End()
		span.SetAttribute("location", spec.Location)
		span.SetAttribute("ref", spec.Ref.String())

		commit, err := r.resolve(ctx, spec)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		span.SetAttribute("commit", commit)

		resolved := domain.ResolvedCommit{Location: spec.Location, Ref: spec.Ref, Commit: commit}
		r.mu.Lock()
		r.cache[key] = resolved
		r.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return domain.ResolvedCommit{}, err
	}

	return withLocation(result.(domain.ResolvedCommit), spec), nil
}

// withLocation keeps the location spelled the way this specifier spelled it,
// since git+ and bare locations share one cache entry.
func withLocation(r domain.ResolvedCommit, spec domain.Specifier) domain.ResolvedCommit {
	r.Location = spec.Location
	r.Ref = spec.Ref
	return r
}

func (r *Resolver) resolve(ctx context.Context, spec domain.Specifier) (string, error) {
	ref := spec.Ref

	if ref.Kind() == domain.RefFullCommit {
		return r.confirmCommit(ctx, spec.Location, strings.ToLower(ref.String()))
	}

	refs, err := r.listRefs(ctx, spec.Location)
	if err != nil {
		return "", err
	}

	if commit, ok := matchRef(refs, ref.Name()); ok {
		return commit, nil
	}

	if ref.Kind() == domain.RefAbbrevCommit && len(ref.String()) >= r.minAbbrevLength {
		return r.matchPrefix(ctx, spec.Location, strings.ToLower(ref.String()))
	}

	return "", refNotFound(spec, "no branch or tag matches the ref")
}

// listRefs fetches the remote listing once per location.
func (r *Resolver) listRefs(ctx context.Context, location string) ([]domain.RemoteRef, error) {
	key := domain.LocationKey(location)

	r.mu.RLock()
	refs, ok := r.refs[key]
	r.mu.RUnlock()
	if ok {
		return refs, nil
	}

	result, err, _ := r.requestGroup.Do("refs:"+key, func() (any, error) {
		return r.source.ListRefs(ctx, location)
	})
	if err != nil {
		return nil, err
	}

	refs = result.([]domain.RemoteRef)
	r.mu.Lock()
	r.refs[key] = refs
	r.mu.Unlock()
	return refs, nil
}

func (r *Resolver) confirmCommit(ctx context.Context, location, commit string) (string, error) {
	commits, err := r.source.Commits(ctx, location)
	if err != nil {
		return "", err
	}
	for _, c := range commits {
		if c == commit {
			return commit, nil
		}
	}
	return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrRefNotFound, "commit does not exist in the repository"),
		"location", location), "ref", commit)
}

func (r *Resolver) matchPrefix(ctx context.Context, location, prefix string) (string, error) {
	commits, err := r.source.Commits(ctx, location)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, c := range commits {
		if strings.HasPrefix(c, prefix) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrRefNotFound, "no ref or commit matches the ref"),
			"location", location), "ref", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", zerr.With(zerr.With(zerr.With(zerr.Wrap(domain.ErrAmbiguousRef, "abbreviated commit matches more than one commit"),
			"location", location), "ref", prefix), "candidates", strings.Join(matches, ", "))
	}
}

// matchRef looks name up in a remote listing. Tags prefer the peeled commit.
func matchRef(refs []domain.RemoteRef, name string) (string, bool) {
	byName := make(map[string]string, len(refs))
	for _, ref := range refs {
		byName[ref.Name] = ref.Commit
	}

	var candidates []string
	switch {
	case name == domain.HeadRef:
		candidates = []string{domain.HeadRef}
	case strings.HasPrefix(name, "refs/"):
		candidates = []string{name + domain.PeeledSuffix, name}
	default:
		candidates = []string{
			"refs/heads/" + name,
			"refs/tags/" + name + domain.PeeledSuffix,
			"refs/tags/" + name,
		}
	}

	for _, c := range candidates {
		if commit, ok := byName[c]; ok && domain.IsFullCommit(commit) {
			return strings.ToLower(commit), true
		}
	}
	return "", false
}

func refNotFound(spec domain.Specifier, reason string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrRefNotFound, reason), "location", spec.Location), "ref", spec.Ref.Name())
}
