// Package reconciler derives the lockfile that describes a resolved tree.
package reconciler

import "go.trai.ch/twig/internal/core/domain"

// Reconcile returns the lockfile for tree. Packages taken from existing unchanged keep their
// entries verbatim; every other package is recorded with its resolved identity; packages no
// longer in the tree are dropped. existing may be nil and is never modified.
func Reconcile(existing *domain.Lockfile, tree *domain.Tree) *domain.Lockfile {
	lock := domain.NewLockfile(tree.Root.Name, tree.Root.Version)

	var prev map[string]*domain.LockEntry
	if existing != nil {
		prev = existing.Dependencies
	}

	for _, n := range tree.Dependencies {
		lock.Dependencies[n.Name] = entry(n, prev[n.Name])
	}
	return lock
}

func entry(n *domain.PackageNode, prev *domain.LockEntry) *domain.LockEntry {
	e := &domain.LockEntry{Version: n.ID(), From: n.From()}
	if n.Locked && prev != nil {
		e.Version, e.From = prev.Version, prev.From
	}

	if len(n.Children) == 0 {
		return e
	}

	e.Dependencies = make(map[string]*domain.LockEntry, len(n.Children))
	for _, c := range n.Children {
		var prevChild *domain.LockEntry
		if child, ok := prev.Child(c.Name); ok {
			prevChild = child
		}
		e.Dependencies[c.Name] = entry(c, prevChild)
	}
	return e
}
