package domain

import (
	"net/url"
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// SourceKind identifies where a dependency comes from.
type SourceKind string

const (
	// SourceGit marks a dependency fetched from a git repository.
	SourceGit SourceKind = "git"
	// SourceRegistry marks a dependency delegated to a registry resolver.
	SourceRegistry SourceKind = "registry"
)

// gitPrefix is the npm-style marker that forces a URL to be treated as a git remote.
const gitPrefix = "git+"

// gitSchemes lists the transports accepted in a git specifier, after the git+ prefix is removed.
var gitSchemes = map[string]bool{
	"git":   true,
	"ssh":   true,
	"https": true,
	"http":  true,
	"file":  true,
}

// Specifier is a parsed dependency reference. It is immutable once parsed.
type Specifier struct {
	// Kind is the source of the dependency.
	Kind SourceKind
	// Location is the repository location exactly as supplied, without the ref.
	Location string
	// Ref is the requested ref.
	Ref Ref
	// Raw is the specifier string as supplied by the user.
	Raw string
}

// ParseSpecifier parses a git specifier of the form <transport>://<host>/<path>.git[#<ref>].
func ParseSpecifier(raw string) (Specifier, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Specifier{}, malformed(raw, "empty specifier")
	}

	location, refText, hasRef := strings.Cut(trimmed, "#")
	if hasRef && refText == "" {
		return Specifier{}, malformed(raw, "empty ref after '#'")
	}

	if err := validateLocation(location); err != nil {
		return Specifier{}, zerr.With(err, "specifier", raw)
	}

	ref := NewRef(refText)
	if err := ref.Validate(); err != nil {
		return Specifier{}, zerr.With(err, "specifier", raw)
	}

	return Specifier{
		Kind:     SourceGit,
		Location: location,
		Ref:      ref,
		Raw:      trimmed,
	}, nil
}

// RegistrySpecifier wraps a non-git specifier for delegation to a registry resolver.
func RegistrySpecifier(raw string) Specifier {
	trimmed := strings.TrimSpace(raw)
	return Specifier{
		Kind:     SourceRegistry,
		Location: trimmed,
		Raw:      trimmed,
	}
}

// IsGitSpecifier reports whether raw should be handled by the git resolver rather than a registry.
func IsGitSpecifier(raw string) bool {
	location, _, _ := strings.Cut(strings.TrimSpace(raw), "#")
	if strings.HasPrefix(location, gitPrefix) {
		return true
	}
	scheme, _, ok := strings.Cut(location, "://")
	if !ok {
		return false
	}
	return gitSchemes[scheme]
}

// String returns the specifier as supplied: location#ref, or just the location when no ref was given.
func (s Specifier) String() string {
	if s.Kind != SourceGit || s.Ref.IsDefault() {
		return s.Location
	}
	return s.Location + "#" + s.Ref.String()
}

// TransportURL returns the URL handed to git, with any git+ prefix removed.
func (s Specifier) TransportURL() string {
	return TransportURL(s.Location)
}

// DefaultName returns the repository basename without the .git suffix.
func (s Specifier) DefaultName() string {
	u, err := url.Parse(s.TransportURL())
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(path.Base(u.Path), ".git")
}

// TransportURL strips the git+ marker from a location.
func TransportURL(location string) string {
	return strings.TrimPrefix(location, gitPrefix)
}

func validateLocation(location string) error {
	if location == "" {
		return malformed(location, "missing repository location")
	}

	u, err := url.Parse(TransportURL(location))
	if err != nil {
		return zerr.Wrap(ErrMalformedSpecifier, err.Error())
	}

	if !gitSchemes[u.Scheme] {
		return zerr.With(zerr.Wrap(ErrMalformedSpecifier, "unsupported transport"), "transport", u.Scheme)
	}
	if u.Scheme != "file" && u.Host == "" {
		return malformed(location, "missing host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return malformed(location, "unexpected query in location")
	}

	p := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(p, ".git") || strings.TrimSuffix(path.Base(p), ".git") == "" {
		return malformed(location, "repository path must end in .git")
	}

	return nil
}

func malformed(raw, reason string) error {
	return zerr.With(zerr.Wrap(ErrMalformedSpecifier, reason), "specifier", raw)
}
