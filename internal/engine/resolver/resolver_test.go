package resolver_test

import (
	"context"
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
	"go.trai.ch/twig/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	remote   *enginetest.Remote
	repo     *enginetest.Repo
	resolver *resolver.Resolver
	c1, c2   string
}

func setup(t *testing.T) *fixture {
	t.Helper()

	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	c1 := repo.Commit(map[string]string{"v": "1"})
	c2 := repo.Commit(map[string]string{"v": "2"})
	repo.Branch("main", c2)
	repo.Branch("legacy", c1)
	repo.Tag("v1.0.0", c1, true)
	repo.Tag("light", c2, false)

	return &fixture{
		remote:   remote,
		repo:     repo,
		resolver: newResolver(t, remote),
		c1:       c1,
		c2:       c2,
	}
}

func newResolver(t *testing.T, remote *enginetest.Remote) *resolver.Resolver {
	t.Helper()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	f := fetcher.New(remote, domain.NewLayout(t.TempDir(), ""), log, telemetry.NewNoOpTracer(), fetcher.Options{
		Retries:    1,
		RetryDelay: time.Millisecond,
	})
	return resolver.New(f, telemetry.NewNoOpTracer(), 0)
}

func parse(t *testing.T, raw string) domain.Specifier {
	t.Helper()
	spec, err := domain.ParseSpecifier(raw)
	require.NoError(t, err)
	return spec
}

func TestResolver_Resolve(t *testing.T) {
	fx := setup(t)
	url := fx.repo.URL()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "default branch", raw: url, want: fx.c2},
		{name: "branch", raw: url + "#legacy", want: fx.c1},
		{name: "annotated tag is peeled", raw: url + "#v1.0.0", want: fx.c1},
		{name: "lightweight tag", raw: url + "#light", want: fx.c2},
		{name: "qualified ref", raw: url + "#refs/heads/legacy", want: fx.c1},
		{name: "full commit", raw: url + "#" + fx.c1, want: fx.c1},
		{name: "abbreviated commit", raw: url + "#" + fx.c1[:8], want: fx.c1},
		{name: "git+ prefix", raw: "git+" + url + "#main", want: fx.c2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := parse(t, tt.raw)

			got, err := fx.resolver.Resolve(context.Background(), spec)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got.Commit)
			assert.Equal(t, spec.Location, got.Location)
			assert.Equal(t, spec.Location+"#"+tt.want, got.ID())
		})
	}
}

func TestResolver_AbbreviationMatchesFullCommit(t *testing.T) {
	fx := setup(t)
	url := fx.repo.URL()

	full, err := fx.resolver.Resolve(context.Background(), parse(t, url+"#"+fx.c2))
	require.NoError(t, err)

	for _, n := range []int{7, 8, 12, 39} {
		short, err := fx.resolver.Resolve(context.Background(), parse(t, url+"#"+fx.c2[:n]))
		require.NoError(t, err)
		assert.Equal(t, full.Commit, short.Commit, "prefix length %d", n)
	}
}

func TestResolver_AmbiguousPrefix(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	a := repo.CommitAs("abcdef1000000000000000000000000000000000", map[string]string{"v": "a"})
	repo.CommitAs("abcdef1999999999999999999999999999999999", map[string]string{"v": "b"})
	repo.Branch("main", a)

	res := newResolver(t, remote)

	_, err := res.Resolve(context.Background(), parse(t, repo.URL()+"#abcdef1"))
	require.ErrorIs(t, err, domain.ErrAmbiguousRef)

	got, err := res.Resolve(context.Background(), parse(t, repo.URL()+"#abcdef10"))
	require.NoError(t, err)
	assert.Equal(t, a, got.Commit)
}

func TestResolver_SymbolicBeforeAbbreviation(t *testing.T) {
	remote := enginetest.NewRemote()
	repo := remote.Repo(enginetest.URL("child"))
	branchTip := repo.CommitAs("1111111111111111111111111111111111111111", map[string]string{"v": "1"})
	repo.CommitAs("deadbeef00000000000000000000000000000000", map[string]string{"v": "2"})
	repo.Branch("deadbeef", branchTip)

	got, err := newResolver(t, remote).Resolve(context.Background(), parse(t, repo.URL()+"#deadbeef"))
	require.NoError(t, err)
	assert.Equal(t, branchTip, got.Commit)
}

func TestResolver_RefNotFound(t *testing.T) {
	fx := setup(t)
	url := fx.repo.URL()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown branch", raw: url + "#nope"},
		{name: "unknown full commit", raw: url + "#ffffffffffffffffffffffffffffffffffffffff"},
		{name: "unknown prefix", raw: url + "#fffffff"},
		{name: "prefix below minimum length", raw: url + "#" + fx.c1[:6]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.resolver.Resolve(context.Background(), parse(t, tt.raw))
			require.ErrorIs(t, err, domain.ErrRefNotFound)
		})
	}
}

func TestResolver_UnreachableRemote(t *testing.T) {
	remote := enginetest.NewRemote()

	_, err := newResolver(t, remote).Resolve(context.Background(), parse(t, enginetest.URL("missing")+"#main"))
	require.ErrorIs(t, err, domain.ErrFetchFailed)
}

func TestResolver_MemoizesPerRun(t *testing.T) {
	fx := setup(t)
	spec := parse(t, fx.repo.URL()+"#main")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := fx.resolver.Resolve(context.Background(), spec)
			assert.NoError(t, err)
			assert.Equal(t, fx.c2, got.Commit)
		}()
	}
	wg.Wait()

	// The branch moves, but this run keeps its answer.
	c3 := fx.repo.Commit(map[string]string{"v": "3"})
	fx.repo.Branch("main", c3)

	got, err := fx.resolver.Resolve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, fx.c2, got.Commit)
	assert.Equal(t, 1, fx.remote.Calls("ListRefs", fx.repo.URL()))

	// A new run sees the move.
	got, err = newResolver(t, fx.remote).Resolve(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, c3, got.Commit)
}
