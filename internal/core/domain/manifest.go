package domain

import (
	"regexp"
	"runtime"
	"slices"
	"time"

	"go.trai.ch/zerr"
)

// validPackageNameRegex restricts package names to a single safe path segment.
var validPackageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Transport names accepted in settings.
const (
	// TransportNative uses the in-process git implementation.
	TransportNative = "native"
	// TransportExec shells out to the git binary.
	TransportExec = "exec"
)

// Manifest is a project or package description.
type Manifest struct {
	// Name is the package name.
	Name string
	// Version is the package's own version label.
	Version string
	// Dependencies maps dependency names to specifier strings.
	Dependencies map[string]string
	// Settings tunes the installer. Only read from the root project manifest.
	Settings Settings
	// Path is the file the manifest was read from. Empty for synthesized manifests.
	Path string
}

// DependencyNames returns the dependency names in sorted order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetDependency records a dependency, allocating the map if needed.
func (m *Manifest) SetDependency(name, specifier string) {
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]string)
	}
	m.Dependencies[name] = specifier
}

// Settings holds the tunables of an install run.
type Settings struct {
	// Concurrency bounds the number of packages processed at once.
	Concurrency int
	// FetchRetries is the number of attempts made for each remote operation.
	FetchRetries int
	// RetryDelay is the delay before the first retry. It doubles on every further attempt.
	RetryDelay time.Duration
	// MinAbbrevLength is the shortest hex prefix accepted as an abbreviated commit.
	MinAbbrevLength int
	// Transport selects the git implementation: native or exec.
	Transport string
	// VerifyContent re-hashes installed packages before skipping them.
	VerifyContent bool
	// CacheDir is the cache directory, relative to the project root unless absolute.
	CacheDir string
}

// DefaultSettings returns the settings used when the manifest leaves them unset.
func DefaultSettings() Settings {
	return Settings{
		Concurrency:     runtime.NumCPU(),
		FetchRetries:    3,
		RetryDelay:      500 * time.Millisecond,
		MinAbbrevLength: DefaultMinAbbrevLength,
		Transport:       TransportNative,
		CacheDir:        DefaultCachePath(),
	}
}

// WithDefaults fills every unset field from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.Concurrency <= 0 {
		s.Concurrency = d.Concurrency
	}
	if s.FetchRetries <= 0 {
		s.FetchRetries = d.FetchRetries
	}
	if s.RetryDelay <= 0 {
		s.RetryDelay = d.RetryDelay
	}
	if s.MinAbbrevLength <= 0 {
		s.MinAbbrevLength = d.MinAbbrevLength
	}
	if s.Transport == "" {
		s.Transport = d.Transport
	}
	if s.CacheDir == "" {
		s.CacheDir = d.CacheDir
	}
	return s
}

// ValidatePackageName ensures name can be used as a directory under the modules directory.
func ValidatePackageName(name string) error {
	if !validPackageNameRegex.MatchString(name) || name == ModulesDirName {
		return zerr.With(zerr.Wrap(ErrInvalidPackageName, "package names must be a single path segment"), "name", name)
	}
	return nil
}
