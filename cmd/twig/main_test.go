package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/twig/internal/adapters/telemetry"
	"go.trai.ch/twig/internal/app"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newComponents(t *testing.T, ctrl *gomock.Controller) (*app.Components, *mocks.MockLogger, *mocks.MockManifestStore) {
	t.Helper()

	log := mocks.NewMockLogger(ctrl)
	manifests := mocks.NewMockManifestStore(ctrl)

	application := app.New(
		manifests,
		mocks.NewMockLockfileStore(ctrl),
		mocks.NewMockInstalledStore(ctrl),
		mocks.NewMockTreeCopier(ctrl),
		mocks.NewMockTreeHasher(ctrl),
		mocks.NewMockGitTransport(ctrl),
		log,
		telemetry.NewNoOpTracer(),
	)

	return &app.Components{App: application, Logger: log}, log, manifests
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, _, _ := newComponents(t, ctrl)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "twig version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, log, manifests := newComponents(t, ctrl)

	dir := t.TempDir()
	manifests.EXPECT().Load(dir).Return(nil, domain.ErrManifestNotFound)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrManifestNotFound)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"install", "-C", dir}, new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Cleanup verifies that the cleanup function runs once the command returns.
func TestRun_Cleanup(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, log, manifests := newComponents(t, ctrl)

	dir := t.TempDir()
	manifests.EXPECT().Load(dir).Return(nil, domain.ErrManifestNotFound)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	cleaned := false
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() { cleaned = true }, nil
	}

	exitCode := run(context.Background(), []string{"clean", "--all", "-C", dir}, new(bytes.Buffer), new(bytes.Buffer), provider)

	assert.Equal(t, 0, exitCode)
	assert.True(t, cleaned)
	_, err := os.Stat(filepath.Join(dir, domain.ModulesDirName))
	assert.True(t, os.IsNotExist(err))
}
