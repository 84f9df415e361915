package ports

// TreeHasher computes content digests of directory trees.
//
//go:generate go run go.uber.org/mock/mockgen -source=fs.go -destination=mocks/mock_fs.go -package=mocks
type TreeHasher interface {
	// HashTree returns a digest of every file below root, skipping names matching ignores.
	HashTree(root string, ignores []string) (string, error)
}

// TreeCopier copies directory trees.
type TreeCopier interface {
	// CopyTree copies src into dst, which must not exist, preserving file modes and symlinks.
	CopyTree(src, dst string) error
}
