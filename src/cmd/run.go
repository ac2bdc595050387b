package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/fsutil"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/store"
	"github.com/shellpm/spm/src/internal/ui"
)

var runInterpreter string

var runCmd = &cobra.Command{
	Use:   "run <file|directory|keywords> [args...]",
	Short: "Run a script, a package, or an installed package",
	Long: `Run a shell script file, a package directory's entrypoint, or an installed
package found by keyword search. When several installed packages match, you are
asked to pick one.

Examples:
  spm run ./deploy.sh --dry-run
  spm run ./greeter
  spm run greeter
  spm run web,server`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		target, scriptArgs := args[0], args[1:]
		if len(scriptArgs) > 0 && scriptArgs[0] == "--" {
			scriptArgs = scriptArgs[1:]
		}
		interp, script, err := resolveRunTarget(env, target)
		if err != nil {
			return err
		}

		ui.Debug("Running %s with %s", script, interp)
		return env.runner.Run(cmd.Context(), interp, script, scriptArgs, shell.CurrentDirectory)
	},
}

// resolveRunTarget picks the script and interpreter for a run target: a file, a
// package directory, or installed packages matching target as keywords
func resolveRunTarget(env *environment, target string) (shell.Interpreter, string, error) {
	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			if runInterpreter != "" {
				interp, err := shell.Parse(runInterpreter)
				return interp, target, err
			}
			return shell.Detect(target, env.defaultInterpreter()), target, nil
		}

		m, err := manifest.Load(target)
		if err != nil {
			return "", "", err
		}
		return m.Interpreter, filepath.Join(target, m.Entrypoint), nil
	}

	pkg, err := pickInstalled(env.store(), target)
	if err != nil {
		return "", "", err
	}
	if !fsutil.Exists(pkg.Entrypoint) {
		return "", "", spmerrors.New(spmerrors.BrokenPackage, "%s has no entrypoint %s", pkg.FullName(), pkg.Manifest.Entrypoint).
			WithRemediation("Reinstall the package with 'spm install --force'")
	}
	return pkg.Manifest.Interpreter, pkg.Entrypoint, nil
}

// pickInstalled finds an installed package by keywords, prompting when several match
func pickInstalled(s *store.Store, keywords string) (store.PackageMetadata, error) {
	matches, err := s.KeywordSearch(keywords)
	if err != nil {
		return store.PackageMetadata{}, err
	}

	switch len(matches) {
	case 0:
		err := spmerrors.New(spmerrors.PackageNotFound, "No installed package matches %q", keywords)
		if suggestions := s.Suggest(keywords, 3); len(suggestions) > 0 {
			return store.PackageMetadata{}, err.WithRemediation("Did you mean: " + strings.Join(suggestions, ", "))
		}
		return store.PackageMetadata{}, err.WithRemediation("Run 'spm list' to see installed packages")
	case 1:
		return matches[0], nil
	}

	options := make([]string, 0, len(matches))
	for _, m := range matches {
		options = append(options, m.FullName()+"  "+ui.HighlightVersion(m.Manifest.Version))
	}
	choice, err := ui.Select("Several packages match "+keywords+":", options)
	if err != nil {
		return store.PackageMetadata{}, err
	}
	return matches[choice], nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	// Everything after the target belongs to the script
	runCmd.Flags().SetInterspersed(false)
	runCmd.Flags().StringVarP(&runInterpreter, "interpreter", "i", "", "Interpreter for a script file (default: from its shebang)")
}
