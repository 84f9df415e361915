package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const (
	// TwigDirName is the name of the internal workspace directory.
	TwigDirName = ".twig"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// MirrorsDirName is the name of the directory holding bare repository mirrors.
	MirrorsDirName = "git"

	// CheckoutsDirName is the name of the directory holding checked out commits.
	CheckoutsDirName = "checkouts"

	// ModulesDirName is the name of the directory packages are installed into.
	ModulesDirName = "twig_modules"

	// ManifestFileName is the name of the YAML project manifest.
	ManifestFileName = "twig.yaml"

	// ManifestTOMLFileName is the name of the TOML project manifest.
	ManifestTOMLFileName = "twig.toml"

	// LockfileName is the name of the lockfile.
	LockfileName = "twig-lock.json"

	// InstalledRecordName is the name of the record kept inside each installed package.
	InstalledRecordName = ".twig-installed.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the default cache path relative to the project root.
// It joins .twig and cache.
func DefaultCachePath() string {
	return filepath.Join(TwigDirName, CacheDirName)
}

// Layout resolves every path the installer touches for one project.
type Layout struct {
	root     string
	cacheDir string
}

// NewLayout returns the layout of the project at root. A relative cacheDir is taken relative to root.
func NewLayout(root, cacheDir string) Layout {
	if cacheDir == "" {
		cacheDir = DefaultCachePath()
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(root, cacheDir)
	}
	return Layout{root: filepath.Clean(root), cacheDir: filepath.Clean(cacheDir)}
}

// Root returns the project root.
func (l Layout) Root() string {
	return l.root
}

// ModulesDir returns the top-level install directory.
func (l Layout) ModulesDir() string {
	return filepath.Join(l.root, ModulesDirName)
}

// LockfilePath returns the path of the lockfile.
func (l Layout) LockfilePath() string {
	return filepath.Join(l.root, LockfileName)
}

// CacheDir returns the cache directory.
func (l Layout) CacheDir() string {
	return l.cacheDir
}

// MirrorsDir returns the directory holding every mirror.
func (l Layout) MirrorsDir() string {
	return filepath.Join(l.cacheDir, MirrorsDirName)
}

// CheckoutsDir returns the directory holding every checkout.
func (l Layout) CheckoutsDir() string {
	return filepath.Join(l.cacheDir, CheckoutsDirName)
}

// MirrorPath returns the bare mirror directory for location.
func (l Layout) MirrorPath(location string) string {
	return filepath.Join(l.MirrorsDir(), LocationKey(location))
}

// CheckoutPath returns the directory holding commit of location.
func (l Layout) CheckoutPath(location, commit string) string {
	return filepath.Join(l.CheckoutsDir(), LocationKey(location)[:16], commit)
}

// LocationKey returns a filesystem-safe key for a repository location.
func LocationKey(location string) string {
	sum := sha256.Sum256([]byte(TransportURL(location)))
	return hex.EncodeToString(sum[:])
}
