package gogittest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports"
)

// RunTransportSuite checks a ports.GitTransport against real repositories.
func RunTransportSuite(t *testing.T, transport ports.GitTransport) {
	t.Helper()
	RequireGit(t)

	ctx := context.Background()
	repo := New(t, "child")
	repo.Write("bin/run.sh", "#!/bin/sh\n", 0o755)
	if runtime.GOOS != "windows" {
		repo.Link("link.txt", "lib/a.txt")
	}
	c1 := repo.Commit(map[string]string{"twig.yaml": "name: child\n", "lib/a.txt": "a"})
	c2 := repo.Commit(map[string]string{"lib/a.txt": "b"})
	repo.Branch("legacy", c1)
	repo.Tag("v1.0.0", c1, true)
	repo.Tag("light", c2, false)

	t.Run("ListRefs", func(t *testing.T) {
		refs, err := transport.ListRefs(ctx, repo.URL())
		require.NoError(t, err)

		byName := make(map[string]string, len(refs))
		for _, r := range refs {
			byName[r.Name] = r.Commit
		}
		assert.Equal(t, c2, byName[domain.HeadRef])
		assert.Equal(t, c2, byName["refs/heads/main"])
		assert.Equal(t, c1, byName["refs/heads/legacy"])
		assert.Equal(t, c2, byName["refs/tags/light"])
		assert.Equal(t, c1, byName["refs/tags/v1.0.0"+domain.PeeledSuffix])
		assert.NotEqual(t, c1, byName["refs/tags/v1.0.0"], "annotated tags advertise the tag object")
	})

	t.Run("ListRefs unreachable", func(t *testing.T) {
		_, err := transport.ListRefs(ctx, "file://"+filepath.ToSlash(filepath.Join(t.TempDir(), "missing.git")))
		require.Error(t, err)
	})

	mirror := filepath.Join(t.TempDir(), "mirrors", "child")
	require.NoError(t, os.MkdirAll(filepath.Dir(mirror), 0o750))

	t.Run("SyncMirror and Commits", func(t *testing.T) {
		require.NoError(t, transport.SyncMirror(ctx, repo.URL(), mirror))

		commits, err := transport.Commits(ctx, mirror)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{c1, c2}, commits)
	})

	t.Run("Checkout", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "checkout")
		require.NoError(t, os.MkdirAll(dest, 0o750))
		require.NoError(t, transport.Checkout(ctx, mirror, c1, dest))

		content, err := os.ReadFile(filepath.Join(dest, "lib", "a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "a", string(content))
		assert.FileExists(t, filepath.Join(dest, "twig.yaml"))
		assert.NoDirExists(t, filepath.Join(dest, ".git"))

		info, err := os.Stat(filepath.Join(dest, "bin", "run.sh"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o100, "executable bit is kept")

		if runtime.GOOS != "windows" {
			target, err := os.Readlink(filepath.Join(dest, "link.txt"))
			require.NoError(t, err)
			assert.Equal(t, "lib/a.txt", target)
		}
	})

	t.Run("Checkout unknown commit", func(t *testing.T) {
		dest := t.TempDir()
		err := transport.Checkout(ctx, mirror, "ffffffffffffffffffffffffffffffffffffffff", dest)
		require.Error(t, err)
	})

	t.Run("SyncMirror picks up new commits", func(t *testing.T) {
		c3 := repo.Commit(map[string]string{"lib/a.txt": "c"})
		require.NoError(t, transport.SyncMirror(ctx, repo.URL(), mirror))

		commits, err := transport.Commits(ctx, mirror)
		require.NoError(t, err)
		assert.Contains(t, commits, c3)
	})

	t.Run("Commits skips rewritten history", func(t *testing.T) {
		c4 := repo.Commit(map[string]string{"lib/a.txt": "d"})
		require.NoError(t, transport.SyncMirror(ctx, repo.URL(), mirror))

		repo.Branch("main", c2)
		require.NoError(t, transport.SyncMirror(ctx, repo.URL(), mirror))

		commits, err := transport.Commits(ctx, mirror)
		require.NoError(t, err)
		assert.NotContains(t, commits, c4)
		assert.ElementsMatch(t, []string{c1, c2}, commits)
	})
}
