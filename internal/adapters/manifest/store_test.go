package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twig/internal/adapters/manifest"
	"go.trai.ch/twig/internal/core/domain"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestStore_Load_YAML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "twig.yaml", `
name: parent
version: 1.0.0
dependencies:
  child: git+file:///remote/child.git#main
settings:
  concurrency: 4
  fetchRetries: 5
  retryDelay: 250ms
  minAbbrevLength: 8
  transport: exec
  verifyContent: true
  cacheDir: .cache
`)

	m, err := manifest.NewStore().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "parent", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Equal(t, map[string]string{"child": "git+file:///remote/child.git#main"}, m.Dependencies)
	assert.Equal(t, filepath.Join(dir, "twig.yaml"), m.Path)
	assert.Equal(t, domain.Settings{
		Concurrency:     4,
		FetchRetries:    5,
		RetryDelay:      250 * time.Millisecond,
		MinAbbrevLength: 8,
		Transport:       domain.TransportExec,
		VerifyContent:   true,
		CacheDir:        ".cache",
	}, m.Settings)
}

func TestStore_Load_TOML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "twig.toml", `
name = "parent"

[dependencies]
child = "https://example.com/child.git#v1.0.0"

[settings]
transport = "native"
`)

	m, err := manifest.NewStore().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "parent", m.Name)
	assert.Equal(t, "https://example.com/child.git#v1.0.0", m.Dependencies["child"])
	assert.Equal(t, domain.TransportNative, m.Settings.Transport)
}

func TestStore_Load_PrefersYAML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "twig.yaml", "name: from-yaml\n")
	write(t, dir, "twig.toml", "name = \"from-toml\"\n")

	m, err := manifest.NewStore().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", m.Name)
}

func TestStore_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{name: "invalid yaml", file: "twig.yaml", content: "name: [unclosed", want: domain.ErrManifestParseFailed},
		{name: "invalid toml", file: "twig.toml", content: "name = ", want: domain.ErrManifestParseFailed},
		{name: "bad retry delay", file: "twig.yaml", content: "settings:\n  retryDelay: soon\n", want: domain.ErrManifestParseFailed},
		{name: "unknown transport", file: "twig.yaml", content: "settings:\n  transport: carrier-pigeon\n", want: domain.ErrManifestParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, tt.file, tt.content)

			_, err := manifest.NewStore().Load(dir)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := manifest.NewStore().Load(t.TempDir())
		require.ErrorIs(t, err, domain.ErrManifestNotFound)
	})
}

func TestStore_Save_RoundTrip(t *testing.T) {
	for _, name := range []string{"twig.yaml", "twig.toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			store := manifest.NewStore()

			m := &domain.Manifest{
				Name:    "parent",
				Version: "0.1.0",
				Settings: domain.Settings{
					Concurrency: 2,
					RetryDelay:  time.Second,
				},
				Path: filepath.Join(dir, name),
			}
			m.SetDependency("child", "git+file:///remote/child.git#deadbeef")

			require.NoError(t, store.Save(dir, m))

			got, err := store.Load(dir)
			require.NoError(t, err)
			assert.Equal(t, m, got)
		})
	}
}

func TestStore_Save_NewManifest(t *testing.T) {
	dir := t.TempDir()
	store := manifest.NewStore()

	m := &domain.Manifest{Name: "fresh"}
	require.NoError(t, store.Save(dir, m))
	assert.Equal(t, filepath.Join(dir, "twig.yaml"), m.Path)

	data, err := os.ReadFile(m.Path)
	require.NoError(t, err)
	assert.Equal(t, "name: fresh\n", string(data))
}

func TestStore_Save_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	err := manifest.NewStore().Save(dir, &domain.Manifest{Name: "x"})
	require.ErrorIs(t, err, domain.ErrManifestWriteFailed)
}
