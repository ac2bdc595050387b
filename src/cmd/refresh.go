package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/ui"
)

var (
	refreshVersion         string
	refreshContinueOnError bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetch every dependency of the current package",
	Long: `Delete and re-create every dependency of the package in the current directory from
its recorded source, then save the new versions to package.json.

By default the first failure aborts and package.json is left untouched. With
--continue-on-error the successful refreshes are saved and all failures reported.

Examples:
  spm refresh
  spm refresh --version main
  spm refresh --continue-on-error`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		if err := env.paths.EnsureDirectories(); err != nil {
			return err
		}
		root, err := os.Getwd()
		if err != nil {
			return err
		}

		var refreshed []string
		err = ui.WithSpinner("Refreshing dependencies...", func() error {
			var err error
			refreshed, err = env.local(refreshContinueOnError).RefreshDependencies(cmd.Context(), root, refreshVersion)
			return err
		})
		for _, name := range refreshed {
			ui.Success("Refreshed %s", ui.Highlight(name))
		}
		if err != nil {
			return err
		}
		if len(refreshed) == 0 {
			ui.Info("No dependencies to refresh")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().StringVar(&refreshVersion, "version", "", "Fetch this tag or branch for every dependency")
	refreshCmd.Flags().BoolVar(&refreshContinueOnError, "continue-on-error", false, "Keep going after a failure and save the successes")
}
