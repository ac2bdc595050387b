package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/ui"
)

var uninstallYes bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name|namespace/name>",
	Short: "Uninstall a package",
	Long: `Run a package's uninstall script and remove it from the spm root.

Nothing is removed if the package's uninstall script is missing.

Examples:
  spm uninstall greeter
  spm uninstall acme/greeter --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		s := env.store()

		pkg, err := s.FindByName(args[0])
		if err != nil {
			return err
		}

		if !uninstallYes && !ui.Confirm("Uninstall "+pkg.FullName()+"?", false) {
			ui.Info("Uninstall cancelled")
			return nil
		}

		if err := s.UninstallPackage(cmd.Context(), pkg); err != nil {
			return err
		}
		ui.Success("Uninstalled %s", ui.Highlight(pkg.FullName()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip confirmation prompt")
}
