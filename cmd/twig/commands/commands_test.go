package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twig/cmd/twig/commands"
	"go.trai.ch/twig/internal/app"
	"go.trai.ch/twig/internal/build"
	"go.trai.ch/twig/internal/core/domain"
	"go.trai.ch/twig/internal/engine/installer"
)

type mockApp struct {
	installFunc func(ctx context.Context, dir string, specs []string, opts app.InstallOptions) (*app.InstallReport, error)
	resolveFunc func(ctx context.Context, dir, raw string) (domain.ResolvedCommit, error)
	cleanFunc   func(ctx context.Context, dir string, opts app.CleanOptions) error
	logOpts     app.LogOptions
}

func (m *mockApp) Install(ctx context.Context, dir string, specs []string, opts app.InstallOptions) (*app.InstallReport, error) {
	if m.installFunc != nil {
		return m.installFunc(ctx, dir, specs, opts)
	}
	return &app.InstallReport{Tree: &domain.Tree{}}, nil
}

func (m *mockApp) Resolve(ctx context.Context, dir, raw string) (domain.ResolvedCommit, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, dir, raw)
	}
	return domain.ResolvedCommit{}, nil
}

func (m *mockApp) Clean(ctx context.Context, dir string, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, dir, opts)
	}
	return nil
}

func (m *mockApp) ConfigureLogging(opts app.LogOptions) {
	m.logOpts = opts
}

const commit = "0123456789abcdef0123456789abcdef01234567"

func TestCommands_Install(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.InstallOptions
		var capturedSpecs []string
		var capturedDir string

		mock := &mockApp{
			installFunc: func(_ context.Context, dir string, specs []string, opts app.InstallOptions) (*app.InstallReport, error) {
				capturedDir = dir
				capturedSpecs = specs
				capturedOpts = opts
				return &app.InstallReport{Tree: &domain.Tree{}}, nil
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{
			"install", "https://example.com/child.git#v1",
			"-C", "project", "-j", "4", "--transport", "exec", "--verify", "--json", "-v",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "project", capturedDir)
		assert.Equal(t, []string{"https://example.com/child.git#v1"}, capturedSpecs)
		assert.Equal(t, app.InstallOptions{Concurrency: 4, Transport: "exec", Verify: true}, capturedOpts)
		assert.Equal(t, app.LogOptions{JSON: true, Verbose: true}, mock.logOpts)
	})

	t.Run("prints report", func(t *testing.T) {
		node := &domain.PackageNode{
			Name:     "child",
			Resolved: domain.ResolvedCommit{Location: "https://example.com/child.git", Commit: commit},
		}
		mock := &mockApp{
			installFunc: func(context.Context, string, []string, app.InstallOptions) (*app.InstallReport, error) {
				return &app.InstallReport{
					Tree: &domain.Tree{Dependencies: []*domain.PackageNode{node}},
					Result: installer.Result{
						Installed: []string{"child"},
						Skipped:   []string{"other"},
						Removed:   []string{"stale"},
					},
				}, nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetArgs([]string{"install"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, out.String(), "child https://example.com/child.git#"+commit)
		assert.Contains(t, out.String(), "- stale")
		assert.Contains(t, out.String(), "1 installed, 1 unchanged, 1 removed")
	})

	t.Run("returns error on install failure", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(context.Context, string, []string, app.InstallOptions) (*app.InstallReport, error) {
				return nil, errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"install"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Resolve(t *testing.T) {
	mock := &mockApp{
		resolveFunc: func(_ context.Context, dir, raw string) (domain.ResolvedCommit, error) {
			assert.Equal(t, ".", dir)
			assert.Equal(t, "https://example.com/child.git#0123456", raw)
			return domain.ResolvedCommit{Location: "https://example.com/child.git", Commit: commit}, nil
		},
	}

	cli := commands.New(mock)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs([]string{"resolve", "https://example.com/child.git#0123456"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "https://example.com/child.git#"+commit+"\n", out.String())

	t.Run("requires one specifier", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"resolve"})
		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.CleanOptions
	}{
		{name: "default", args: nil, want: app.CleanOptions{Mirrors: true, Checkouts: true}},
		{name: "mirrors", args: []string{"--mirrors"}, want: app.CleanOptions{Mirrors: true}},
		{name: "checkouts and modules", args: []string{"-k", "--modules"}, want: app.CleanOptions{Checkouts: true, Modules: true}},
		{name: "all", args: []string{"--all"}, want: app.CleanOptions{Mirrors: true, Checkouts: true, Modules: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got app.CleanOptions
			mock := &mockApp{
				cleanFunc: func(_ context.Context, _ string, opts app.CleanOptions) error {
					got = opts
					return nil
				},
			}

			cli := commands.New(mock)
			cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
			cli.SetArgs(append([]string{"clean"}, tt.args...))

			require.NoError(t, cli.Execute(context.Background()))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	t.Run("subcommand", func(t *testing.T) {
		mock := &mockApp{}
		cli := commands.New(mock)

		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"version"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)

		assert.Contains(t, buf.String(), build.Version)
	})

	t.Run("long flag", func(t *testing.T) {
		cli := commands.New(&mockApp{})

		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"--version"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "twig version "+build.Version)
	})

	t.Run("short v is verbose", func(t *testing.T) {
		mock := &mockApp{}
		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"-v", "version"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.True(t, mock.logOpts.Verbose)
	})
}
