package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/ui"
)

var removeCmd = &cobra.Command{
	Use:   "remove <namespace/name>",
	Short: "Remove a dependency from the current package",
	Long: `Remove a dependency from package.json and delete its dependencies/ directory.

Examples:
  spm remove acme/strings
  spm remove local/strings`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		namespace, name, ok := strings.Cut(args[0], "/")
		if !ok || namespace == "" || name == "" || strings.Contains(name, "/") {
			return spmerrors.New(spmerrors.InvalidDependencyURL, "invalid dependency %q: expected <namespace>/<name>", args[0]).
				WithRemediation("Run 'cat package.json' to see the dependencies and their namespaces")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		root, err := os.Getwd()
		if err != nil {
			return err
		}

		dep, err := env.local(false).RemoveDependency(cmd.Context(), root, name, namespace)
		if err != nil {
			return err
		}
		ui.Success("Removed %s", ui.Highlight(dep.FullName()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
