package domain

import "strings"

const (
	// CommitLength is the length of a full hex-encoded SHA-1 commit hash.
	CommitLength = 40

	// DefaultMinAbbrevLength is the shortest commit prefix accepted as an abbreviated commit.
	DefaultMinAbbrevLength = 7

	// HeadRef is the symbolic ref naming the default branch of a repository.
	HeadRef = "HEAD"

	// PeeledSuffix marks the commit an annotated tag points at in a remote listing.
	PeeledSuffix = "^{}"
)

// IsHex reports whether s is non-empty and consists only of hex digits.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// IsFullCommit reports whether s is a full 40 character commit hash.
func IsFullCommit(s string) bool {
	return len(s) == CommitLength && IsHex(s)
}

// ResolvedCommit is the immutable identity a specifier resolves to.
type ResolvedCommit struct {
	// Location is the repository location, as supplied in the specifier.
	Location string
	// Ref is the ref that was resolved.
	Ref Ref
	// Commit is the lowercase 40 character commit hash.
	Commit string
}

// ID returns the canonical identity location#commit.
func (r ResolvedCommit) ID() string {
	return r.Location + "#" + r.Commit
}

// Short returns an abbreviated commit for display.
func (r ResolvedCommit) Short() string {
	if len(r.Commit) < DefaultMinAbbrevLength {
		return r.Commit
	}
	return r.Commit[:DefaultMinAbbrevLength]
}

// IsZero reports whether nothing has been resolved.
func (r ResolvedCommit) IsZero() bool {
	return r.Commit == ""
}

// SplitID splits a canonical identity into its location and commit.
// ok is false when id does not end in a full commit hash.
func SplitID(id string) (location, commit string, ok bool) {
	i := strings.LastIndex(id, "#")
	if i < 0 {
		return "", "", false
	}
	location, commit = id[:i], id[i+1:]
	if location == "" || !IsFullCommit(commit) {
		return "", "", false
	}
	return location, strings.ToLower(commit), true
}

// RemoteRef is a single (ref, commit) pair advertised by a remote.
type RemoteRef struct {
	// Name is the fully-qualified ref name, e.g. refs/heads/main, or HEAD.
	// Peeled tag entries carry the ^{} suffix.
	Name string
	// Commit is the object the ref points to.
	Commit string
}
