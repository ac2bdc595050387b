package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/scaffold"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/ui"
)

// Flags shared by new and init
var (
	createLibrary     bool
	createNamespace   string
	createInterpreter string
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a package in a new directory",
	Long: `Create a directory named after the package and lay out a package inside it:
package.json, the entrypoint, setup and uninstall scripts, src/ with the std
include helper, and dependencies/.

Examples:
  spm new greeter
  spm new strings --lib --namespace acme --interpreter bash`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if name == "." || name == ".." || filepath.Base(name) != name {
			return fmt.Errorf("package name %q must be a plain directory name", name)
		}

		dir, err := filepath.Abs(name)
		if err != nil {
			return err
		}
		if err := os.Mkdir(dir, 0755); err != nil {
			if os.IsExist(err) {
				return fmt.Errorf("%s already exists; use 'spm init' inside it instead", name)
			}
			return err
		}

		if err := createPackage(dir, name); err != nil {
			_ = os.RemoveAll(dir)
			return err
		}
		return nil
	},
}

// createPackage scaffolds a package named name in dir using the new/init flags
func createPackage(dir, name string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	interp := env.defaultInterpreter()
	if createInterpreter != "" {
		if interp, err = shell.Parse(createInterpreter); err != nil {
			return err
		}
	}

	m := manifest.New(name, createLibrary, interp)
	if createNamespace != "" {
		m = manifest.NewWithNamespace(name, createNamespace, createLibrary, interp)
	}

	if err := scaffold.Create(dir, m); err != nil {
		return err
	}

	kind := "package"
	if createLibrary {
		kind = "library"
	}
	ui.Success("Created %s %s in %s", kind, ui.Highlight(m.FullName()), dir)
	ui.Info("Entrypoint: %s", m.Entrypoint)
	return nil
}

func addCreateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&createLibrary, "lib", "l", false, "Create a library that other packages can depend on")
	cmd.Flags().StringVarP(&createNamespace, "namespace", "n", "", "Package namespace (default \"default-namespace\")")
	cmd.Flags().StringVarP(&createInterpreter, "interpreter", "i", "", "Interpreter: sh, bash, zsh or cmd (default from settings)")
}

func init() {
	rootCmd.AddCommand(newCmd)
	addCreateFlags(newCmd)
}
