package cmd

import (
	"os"

	"github.com/spf13/cobra"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/source"
	"github.com/shellpm/spm/src/internal/ui"
)

var (
	addVersion string
	addBaseURL string
)

var addCmd = &cobra.Command{
	Use:   "add <path|user/repo|git-url>",
	Short: "Add a library dependency to the current package",
	Long: `Copy a library package into dependencies/<namespace>/<name> of the package in the
current directory and record it in package.json.

Local directories are recorded by absolute path in the "local" namespace; repositories
are recorded by their URL so 'spm refresh' can fetch them again. Archives are not
accepted.

Examples:
  spm add ../strings
  spm add acme/strings --version v2.0.0
  spm add https://github.com/acme/strings.git`,
	Args: cobra.ExactArgs(1),
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

		resolved, err := resolveSource(cmd, env, args[0], addVersion, addBaseURL)
		if err != nil {
			return err
		}
		defer resolved.Cleanup()

		// Dependencies are re-fetched by 'spm refresh' from their url, which only works for directories and repositories
		if resolved.Kind == source.Archive || resolved.Kind == source.RemoteArchive {
			return spmerrors.New(spmerrors.InvalidSource, "%s is an archive; dependencies must come from a directory or a git repository", args[0]).
				WithRemediation("Extract the archive and run 'spm add <directory>'")
		}

		dep, err := env.local(false).AddDependency(cmd.Context(), root, resolved.Path, resolved.Origin, addVersion)
		if err != nil {
			return err
		}

		ui.Success("Added %s", ui.Highlight(dep.FullName()))
		if dep.Version != "" {
			ui.Info("Version: %s", ui.HighlightVersion(dep.Version))
		}
		ui.Debug("Source: %s", dep.URL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addVersion, "version", "", "Tag or branch to fetch from a repository")
	addCmd.Flags().StringVar(&addBaseURL, "base-url", "", "Base URL for user/repo specs (default from settings)")
}
