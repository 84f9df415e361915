package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/twig/internal/app"
)

func (c *CLI) newInstallCmd() *cobra.Command {
	var opts app.InstallOptions

	cmd := &cobra.Command{
		Use:     "install [specifier...]",
		Aliases: []string{"i"},
		Short:   "Install the project's dependencies, adding any given specifiers",
		Long: `Install resolves every dependency of the project, places it under twig_modules,
and writes twig-lock.json.

Each specifier is a git URL with an optional ref, for example
  https://github.com/org/repo.git#v1.2.0
  git+ssh://git@github.com/org/repo.git#3f2a9c1e
Given specifiers are added to the manifest.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Install(cmd.Context(), c.dir, args, opts)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Concurrency, "concurrency", "j", 0, "Maximum number of packages processed at once")
	cmd.Flags().StringVar(&opts.Transport, "transport", "", "Git implementation to use: native or exec")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Re-hash installed packages and reinstall those that changed")
	return cmd
}
