package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/twig/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	var opts app.CleanOptions
	var all bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached repositories and checkouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case all:
				opts = app.CleanOptions{Mirrors: true, Checkouts: true, Modules: true}
			case opts == (app.CleanOptions{}):
				// Default behavior: clean both caches
				opts.Mirrors = true
				opts.Checkouts = true
			}

			return c.app.Clean(cmd.Context(), c.dir, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Mirrors, "mirrors", "m", false, "Remove repository mirrors")
	cmd.Flags().BoolVarP(&opts.Checkouts, "checkouts", "k", false, "Remove checked out commits")
	cmd.Flags().BoolVar(&opts.Modules, "modules", false, "Remove installed packages")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Remove caches and installed packages")

	return cmd
}
