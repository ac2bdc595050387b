package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/path"
	"github.com/shellpm/spm/src/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the spm root and add its bin directory to PATH",
	Long: `Prepare spm for first use.

This command:
  - Creates the ~/.spm directory structure (packages, bin, tmp, locks)
  - Adds ~/.spm/bin to your PATH (with your permission) so registered packages run by name

Example:
  spm setup`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		ui.Header("Setting up spm in %s", env.paths.Root)

		spinner := ui.NewSpinner("Creating directories...")
		spinner.Start()
		if err := env.paths.EnsureDirectories(); err != nil {
			spinner.Error("Failed to create directories")
			return err
		}
		spinner.Success("Directories created")

		if path.IsInPath(env.paths.Bin) {
			ui.Success("%s is already in PATH", env.paths.Bin)
			return nil
		}
		if err := path.AddToPath(env.paths.Bin); err != nil {
			ui.Error("Failed to configure PATH: %v", err)
			ui.Info("You can manually add %s to your PATH", env.paths.Bin)
			return nil
		}

		ui.Success("spm is ready")
		ui.Info("Restart your terminal for PATH changes to take effect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
