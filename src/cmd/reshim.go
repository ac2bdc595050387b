package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/shim"
	"github.com/shellpm/spm/src/internal/ui"
)

var reshimCmd = &cobra.Command{
	Use:   "reshim",
	Short: "Regenerate launchers for registered packages",
	Long: `Regenerate the launchers in ~/.spm/bin for every installed package that sets
"register_to_environment_tool".

Run this command if launchers go missing or after moving the spm root.

Example:
  spm reshim`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		if err := env.paths.EnsureDirectories(); err != nil {
			return err
		}

		spinner := ui.NewSpinner("Regenerating launchers...")
		spinner.Start()
		if err := env.store().Rehash(); err != nil {
			spinner.Error("Failed to regenerate launchers")
			return err
		}

		names, err := shim.NewManager(env.paths.Bin).ListShims()
		if err != nil {
			spinner.Stop()
			return err
		}
		spinner.Success("Launchers regenerated")
		for _, name := range names {
			ui.Println("  %s", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reshimCmd)
}
