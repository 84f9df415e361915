package domain

import (
	"iter"
	"path"
	"slices"
	"strings"
)

// PackageNode is one resolved package in the dependency tree.
type PackageNode struct {
	// Name is the directory name the package is installed under.
	Name string
	// Specifier is the specifier the package was requested with.
	Specifier Specifier
	// Resolved is the commit a git specifier resolved to.
	Resolved ResolvedCommit
	// SourceTreePath is the local directory holding the package contents.
	SourceTreePath string
	// Manifest is the package's own manifest, synthesized when the package ships none.
	Manifest Manifest
	// Children are the package's dependencies, ordered by name.
	Children []*PackageNode
	// Locked marks a package whose identity was taken from the existing lockfile.
	Locked bool
	// Registry marks a package resolved by a registry resolver.
	Registry bool
	// Version is the identity reported by a registry resolver.
	Version string
}

// ID returns the canonical identity recorded in the lockfile and installed record.
func (n *PackageNode) ID() string {
	if n.Registry {
		return n.Version
	}
	return n.Resolved.ID()
}

// From returns the specifier as the user supplied it.
func (n *PackageNode) From() string {
	return n.Specifier.String()
}

// Child returns the direct dependency called name.
func (n *PackageNode) Child(name string) (*PackageNode, bool) {
	return findNode(n.Children, name)
}

// SortChildren orders the children by name.
func (n *PackageNode) SortChildren() {
	sortNodes(n.Children)
}

// Tree is the resolved dependency tree of a project.
type Tree struct {
	// Root is the project manifest the tree was built from.
	Root Manifest
	// Dependencies are the top-level packages, ordered by name.
	Dependencies []*PackageNode
}

// Dependency returns the top-level package called name.
func (t *Tree) Dependency(name string) (*PackageNode, bool) {
	return findNode(t.Dependencies, name)
}

// Find returns the package at the slash-separated install path, e.g. "parent/child".
func (t *Tree) Find(p string) (*PackageNode, bool) {
	names := strings.Split(p, "/")
	nodes := t.Dependencies
	var found *PackageNode
	for _, name := range names {
		n, ok := findNode(nodes, name)
		if !ok {
			return nil, false
		}
		found = n
		nodes = n.Children
	}
	return found, found != nil
}

// All yields every package with its slash-separated install path, parents before children.
func (t *Tree) All() iter.Seq2[string, *PackageNode] {
	return func(yield func(string, *PackageNode) bool) {
		var walk func(prefix string, nodes []*PackageNode) bool
		walk = func(prefix string, nodes []*PackageNode) bool {
			for _, n := range nodes {
				p := path.Join(prefix, n.Name)
				if !yield(p, n) {
					return false
				}
				if !walk(p, n.Children) {
					return false
				}
			}
			return true
		}
		walk("", t.Dependencies)
	}
}

// Len returns the number of packages in the tree.
func (t *Tree) Len() int {
	count := 0
	for range t.All() {
		count++
	}
	return count
}

func findNode(nodes []*PackageNode, name string) (*PackageNode, bool) {
	for _, n := range nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

func sortNodes(nodes []*PackageNode) {
	slices.SortFunc(nodes, func(a, b *PackageNode) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// SortDependencies orders the top-level packages by name.
func (t *Tree) SortDependencies() {
	sortNodes(t.Dependencies)
}
