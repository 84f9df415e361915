package manifest

// File represents the structure of a twig.yaml or twig.toml manifest.
type File struct {
	Name         string            `yaml:"name"                   toml:"name"`
	Version      string            `yaml:"version,omitempty"      toml:"version,omitempty"`
	Dependencies map[string]string `yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Settings     *SettingsDTO      `yaml:"settings,omitempty"     toml:"settings,omitempty"`
}

// SettingsDTO represents the settings block of the root manifest.
type SettingsDTO struct {
	Concurrency     int    `yaml:"concurrency,omitempty"     toml:"concurrency,omitempty"`
	FetchRetries    int    `yaml:"fetchRetries,omitempty"    toml:"fetchRetries,omitempty"`
	RetryDelay      string `yaml:"retryDelay,omitempty"      toml:"retryDelay,omitempty"`
	MinAbbrevLength int    `yaml:"minAbbrevLength,omitempty" toml:"minAbbrevLength,omitempty"`
	Transport       string `yaml:"transport,omitempty"       toml:"transport,omitempty"`
	VerifyContent   bool   `yaml:"verifyContent,omitempty"   toml:"verifyContent,omitempty"`
	CacheDir        string `yaml:"cacheDir,omitempty"        toml:"cacheDir,omitempty"`
}
