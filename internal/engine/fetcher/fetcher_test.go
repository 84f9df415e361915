package fetcher_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twig/internal/adapters/telemetry"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports/mocks"
	"go.trai.ch/twig/internal/engine/enginetest"
	"go.trai.ch/twig/internal/engine/fetcher"
	"go.uber.org/mock/gomock"
)

func quietLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return log
}

func newFetcher(t *testing.T, transport *enginetest.Remote, layout domain.Layout) *fetcher.Fetcher {
	t.Helper()
	return fetcher.New(transport, layout, quietLogger(t), telemetry.NewNoOpTracer(), fetcher.Options{
		Retries:    3,
		RetryDelay: time.Millisecond,
	})
}

func TestFetcher_Fetch(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	commit := repo.Commit(enginetest.Files(
		enginetest.Manifest("child", "1.0.0", nil),
		map[string]string{"lib/index.txt": "hello"},
	))
	repo.Branch("main", commit)

	layout := domain.NewLayout(t.TempDir(), "")
	f := newFetcher(t, remote, layout)

	path, err := f.Fetch(context.Background(), repo.URL(), commit)
	require.NoError(t, err)

	assert.Equal(t, layout.CheckoutPath(repo.URL(), commit), path)
	content, err := os.ReadFile(filepath.Join(path, "lib", "index.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	// No staging directories are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFetcher_ReusesCheckoutAcrossRuns(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	commit := repo.Commit(enginetest.Manifest("child", "1.0.0", nil))

	layout := domain.NewLayout(t.TempDir(), "")

	_, err := newFetcher(t, remote, layout).Fetch(context.Background(), repo.URL(), commit)
	require.NoError(t, err)
	_, err = newFetcher(t, remote, layout).Fetch(context.Background(), repo.URL(), commit)
	require.NoError(t, err)

	assert.Equal(t, 1, remote.Calls("SyncMirror", repo.URL()))
	assert.Equal(t, 1, remote.Calls("Checkout", layout.MirrorPath(repo.URL())))
}

func TestFetcher_SyncsMirrorOncePerRun(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	c1 := repo.Commit(map[string]string{"a": "1"})
	c2 := repo.Commit(map[string]string{"a": "2"})

	layout := domain.NewLayout(t.TempDir(), "")
	f := newFetcher(t, remote, layout)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, c := range []string{c1, c2, c1, c2} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(ctx, repo.URL(), c)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	commits, err := f.Commits(ctx, repo.URL())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{c1, c2}, commits)
	assert.Equal(t, 1, remote.Calls("SyncMirror", repo.URL()))
}

func TestFetcher_NewCommitNeedsNewRun(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	c1 := repo.Commit(map[string]string{"a": "1"})

	layout := domain.NewLayout(t.TempDir(), "")
	ctx := context.Background()

	first := newFetcher(t, remote, layout)
	_, err := first.Fetch(ctx, repo.URL(), c1)
	require.NoError(t, err)

	c2 := repo.Commit(map[string]string{"a": "2"})

	_, err = first.Fetch(ctx, repo.URL(), c2)
	require.ErrorIs(t, err, domain.ErrCommitNotFound)

	_, err = newFetcher(t, remote, layout).Fetch(ctx, repo.URL(), c2)
	require.NoError(t, err)
}

func TestFetcher_CommitNotFound(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	repo.Commit(map[string]string{"a": "1"})

	layout := domain.NewLayout(t.TempDir(), "")
	missing := "ffffffffffffffffffffffffffffffffffffffff"

	_, err := newFetcher(t, remote, layout).Fetch(context.Background(), repo.URL(), missing)

	require.ErrorIs(t, err, domain.ErrCommitNotFound)
	assert.Contains(t, err.Error(), "twig clean --mirrors")
	_, statErr := os.Stat(layout.CheckoutPath(repo.URL(), missing))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetcher_RetriesTransientFailures(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	commit := repo.Commit(map[string]string{"a": "1"})
	remote.Fail("SyncMirror", repo.URL(), 2)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).Times(2)

	f := fetcher.New(remote, domain.NewLayout(t.TempDir(), ""), log, telemetry.NewNoOpTracer(), fetcher.Options{
		Retries:    3,
		RetryDelay: time.Millisecond,
	})

	_, err := f.Fetch(context.Background(), repo.URL(), commit)
	require.NoError(t, err)
	assert.Equal(t, 3, remote.Calls("SyncMirror", repo.URL()))
}

func TestFetcher_FetchFailedAfterRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockGitTransport(ctrl)
	transport.EXPECT().
		SyncMirror(gomock.Any(), "https://example.com/child.git", gomock.Any()).
		Return(errors.New("connection refused")).
		Times(3)

	f := fetcher.New(transport, domain.NewLayout(t.TempDir(), ""), quietLogger(t), telemetry.NewNoOpTracer(), fetcher.Options{
		Retries:    3,
		RetryDelay: time.Millisecond,
	})

	_, err := f.Fetch(context.Background(), "git+https://example.com/child.git", "1111111111111111111111111111111111111111")

	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetcher_ListRefs(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockGitTransport(ctrl)
	refs := []domain.RemoteRef{{Name: "HEAD", Commit: "1111111111111111111111111111111111111111"}}

	gomock.InOrder(
		transport.EXPECT().ListRefs(gomock.Any(), "https://example.com/child.git").Return(nil, errors.New("timeout")),
		transport.EXPECT().ListRefs(gomock.Any(), "https://example.com/child.git").Return(refs, nil),
	)

	f := fetcher.New(transport, domain.NewLayout(t.TempDir(), ""), quietLogger(t), telemetry.NewNoOpTracer(), fetcher.Options{
		Retries:    2,
		RetryDelay: time.Millisecond,
	})

	got, err := f.ListRefs(context.Background(), "https://example.com/child.git")
	require.NoError(t, err)
	assert.Equal(t, refs, got)
}

func TestFetcher_CancelledContext(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	remote.Fail("ListRefs", repo.URL(), 5)

	f := newFetcher(t, remote, domain.NewLayout(t.TempDir(), ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ListRefs(ctx, repo.URL())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, remote.Calls("ListRefs", repo.URL()))
}
