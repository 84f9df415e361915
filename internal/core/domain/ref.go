package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// RefKind classifies a requested ref by its textual shape.
type RefKind int

const (
	// RefDefault is an omitted ref, resolved to the repository's default branch.
	RefDefault RefKind = iota
	// RefSymbolic is a branch, tag or fully-qualified ref name.
	RefSymbolic
	// RefFullCommit is a full 40 character commit hash.
	RefFullCommit
	// RefAbbrevCommit is a hex string shorter than a full hash. It may still name a branch or tag.
	RefAbbrevCommit
)

// String returns a readable name for the kind.
func (k RefKind) String() string {
	switch k {
	case RefDefault:
		return "default"
	case RefSymbolic:
		return "symbolic"
	case RefFullCommit:
		return "commit"
	case RefAbbrevCommit:
		return "abbreviated-commit"
	default:
		return "unknown"
	}
}

// Ref is the ref a user asked for, kept exactly as typed.
type Ref struct {
	kind RefKind
	text string
}

// NewRef classifies text. An empty string is the default ref.
func NewRef(text string) Ref {
	switch {
	case text == "":
		return Ref{kind: RefDefault}
	case len(text) == CommitLength && IsHex(text):
		return Ref{kind: RefFullCommit, text: text}
	case len(text) < CommitLength && IsHex(text):
		return Ref{kind: RefAbbrevCommit, text: text}
	default:
		return Ref{kind: RefSymbolic, text: text}
	}
}

// Kind returns the classification of the ref.
func (r Ref) Kind() RefKind {
	return r.kind
}

// String returns the ref as typed. The default ref is the empty string.
func (r Ref) String() string {
	return r.text
}

// IsDefault reports whether the ref was omitted.
func (r Ref) IsDefault() bool {
	return r.kind == RefDefault
}

// Name returns the name used to look the ref up in a remote listing.
func (r Ref) Name() string {
	if r.kind == RefDefault {
		return HeadRef
	}
	return r.text
}

// Validate rejects refs git would refuse or that could be mistaken for command line options.
func (r Ref) Validate() error {
	if r.kind == RefDefault {
		return nil
	}

	t := r.text
	switch {
	case strings.HasPrefix(t, "-"):
		return zerr.With(zerr.Wrap(ErrMalformedSpecifier, "ref must not start with '-'"), "ref", t)
	case strings.Contains(t, ".."), strings.Contains(t, "@{"), strings.Contains(t, "//"):
		return zerr.With(zerr.Wrap(ErrMalformedSpecifier, "invalid ref name"), "ref", t)
	case strings.HasSuffix(t, "/"), strings.HasSuffix(t, ".lock"), strings.HasSuffix(t, "."):
		return zerr.With(zerr.Wrap(ErrMalformedSpecifier, "invalid ref name"), "ref", t)
	}

	for _, c := range t {
		if c <= ' ' || c == 0x7f || strings.ContainsRune("~^:?*[\\", c) {
			return zerr.With(zerr.Wrap(ErrMalformedSpecifier, "invalid character in ref"), "ref", t)
		}
	}

	return nil
}
