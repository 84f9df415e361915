// Package commands implements the CLI commands for the twig package installer.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/twig/internal/app"
	"go.trai.ch/twig/internal/build"
	"go.trai.ch/twig/internal/core/domain"
)

// CLI represents the command line interface for twig.
type CLI struct {
	app     Application
	rootCmd *cobra.Command

	dir     string
	json    bool
	verbose bool
}

// Application represents the application logic interface.
type Application interface {
	Install(ctx context.Context, dir string, specs []string, opts app.InstallOptions) (*app.InstallReport, error)
	Resolve(ctx context.Context, dir, raw string) (domain.ResolvedCommit, error)
	Clean(ctx context.Context, dir string, opts app.CleanOptions) error
	ConfigureLogging(opts app.LogOptions)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "twig",
		Short:         "Install dependencies straight from git repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.ConfigureLogging(app.LogOptions{JSON: c.json, Verbose: c.verbose})
		},
	}

	// -v belongs to --verbose, so --version is registered without a shorthand.
	rootCmd.Flags().Bool("version", false, "Print the application version")
	rootCmd.InitDefaultVersionFlag()

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringVarP(&c.dir, "dir", "C", ".", "Run as if twig was started in this directory")
	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Show debug logs")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newInstallCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// Ensure that app.App satisfies Application.
var _ Application = (*app.App)(nil)
