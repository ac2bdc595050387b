package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/source"
	"github.com/shellpm/spm/src/internal/ui"
)

var (
	installForce   bool
	installVersion string
	installBaseURL string
)

var installCmd = &cobra.Command{
	Use:   "install <path|archive|user/repo|url>",
	Short: "Install a package",
	Long: `Install a package into the spm root and run its setup script.

The source can be a package directory, a .zip/.tar.gz/.tgz/.7z archive (local or
http(s), optionally suffixed with #sha256=<hex>), a git URL, or a user/repo spec
resolved against the configured base URL.

Examples:
  spm install ./greeter
  spm install acme/greeter --version v1.2.0
  spm install https://example.com/greeter-1.0.tar.gz
  spm install ./greeter --force    # Replace an existing install`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		if err := env.paths.EnsureDirectories(); err != nil {
			return err
		}

		resolved, err := resolveSource(cmd, env, args[0], installVersion, installBaseURL)
		if err != nil {
			return err
		}
		defer resolved.Cleanup()

		ui.Debug("Installing from %s (%s)", resolved.Path, resolved.Kind)

		// Scratch copies are moved into place instead of copied
		pkg, err := env.store().Install(cmd.Context(), resolved.Path, resolved.Temporary, installForce)
		if err != nil {
			return err
		}

		ui.Success("Installed %s %s", ui.Highlight(pkg.FullName()), ui.HighlightVersion(pkg.Manifest.Version))
		ui.Debug("Location: %s", pkg.Dir)
		if pkg.Manifest.Install.RegisterToEnvironmentTool {
			ui.Info("Registered %s in %s", pkg.Manifest.Name, env.paths.Bin)
		}
		return nil
	},
}

// resolveSource resolves expr behind a spinner. Archive downloads draw their own
// progress bar and run without one.
func resolveSource(cmd *cobra.Command, env *environment, expr, version, baseURL string) (*source.Resolved, error) {
	if !usesSpinner(expr) {
		return env.resolver(baseURL).Resolve(cmd.Context(), expr, version)
	}

	var resolved *source.Resolved
	err := ui.WithSpinner("Fetching "+expr+"...", func() error {
		var err error
		resolved, err = env.resolver(baseURL).Resolve(cmd.Context(), expr, version)
		return err
	})
	return resolved, err
}

func usesSpinner(expr string) bool {
	return !source.IsRemoteArchive(expr)
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVarP(&installForce, "force", "F", false, "Replace the package if it is already installed")
	installCmd.Flags().StringVar(&installVersion, "version", "", "Tag or branch to install from a repository")
	installCmd.Flags().StringVar(&installBaseURL, "base-url", "", "Base URL for user/repo specs (default from settings)")
}
