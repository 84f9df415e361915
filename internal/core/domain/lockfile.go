package domain

import (
	"slices"
	"strings"
)

// LockfileVersion is the current lockfile format version.
const LockfileVersion = 1

// Lockfile records the exact identity of every installed package.
type Lockfile struct {
	// Name is the project name.
	Name string `json:"name"`
	// Version is the project version.
	Version string `json:"version,omitempty"`
	// LockfileVersion is the format version of the file.
	LockfileVersion int `json:"lockfileVersion"`
	// Dependencies maps top-level package names to their entries.
	Dependencies map[string]*LockEntry `json:"dependencies"`
}

// LockEntry is the locked identity of one package.
type LockEntry struct {
	// Version is the canonical identity, location#commit for git packages.
	Version string `json:"version"`
	// From is the specifier as the user supplied it.
	From string `json:"from,omitempty"`
	// Dependencies holds the entries of packages installed beneath this one.
	Dependencies map[string]*LockEntry `json:"dependencies,omitempty"`
}

// NewLockfile returns an empty lockfile for the given project.
func NewLockfile(name, version string) *Lockfile {
	return &Lockfile{
		Name:            name,
		Version:         version,
		LockfileVersion: LockfileVersion,
		Dependencies:    make(map[string]*LockEntry),
	}
}

// Entry returns the entry at the slash-separated install path, e.g. "parent/child".
// It is safe to call on a nil lockfile.
func (l *Lockfile) Entry(p string) (*LockEntry, bool) {
	if l == nil {
		return nil, false
	}
	deps := l.Dependencies
	var found *LockEntry
	for name := range strings.SplitSeq(p, "/") {
		e, ok := deps[name]
		if !ok || e == nil {
			return nil, false
		}
		found = e
		deps = e.Dependencies
	}
	return found, found != nil
}

// Names returns the top-level package names in sorted order.
func (l *Lockfile) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.Dependencies))
	for name := range l.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Child returns the nested entry called name.
func (e *LockEntry) Child(name string) (*LockEntry, bool) {
	if e == nil {
		return nil, false
	}
	c, ok := e.Dependencies[name]
	return c, ok && c != nil
}
