package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/constants"
	"github.com/shellpm/spm/src/internal/manifest"
	"github.com/shellpm/spm/src/internal/shell"
	"github.com/shellpm/spm/src/internal/ui"
)

var checkInterpreter string

var checkCmd = &cobra.Command{
	Use:   "check [file|dir]",
	Short: "Check shell scripts for syntax errors",
	Long: `Parse shell scripts without running them and report syntax errors.

Given a directory, every .sh file below it is checked except those inside
dependencies/. The interpreter of each file comes from its shebang, then the
package manifest, then the default interpreter.

Examples:
  spm check
  spm check ./greeter/main.sh
  spm check ./greeter --interpreter bash`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) == 1 {
			target = args[0]
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		fallback := env.defaultInterpreter()
		if checkInterpreter != "" {
			if fallback, err = shell.Parse(checkInterpreter); err != nil {
				return err
			}
		} else if m, err := manifest.Read(target); err == nil {
			fallback = m.Interpreter
		}

		files, err := scriptsToCheck(target)
		if err != nil {
			return err
		}

		failed := 0
		for _, file := range files {
			interp := shell.Detect(file, fallback)
			if checkInterpreter != "" {
				interp = fallback
			}
			if interp == shell.Cmd {
				ui.Debug("Skipping %s (cmd scripts are not checked)", file)
				continue
			}
			if err := shell.CheckSyntax(file, interp); err != nil {
				ui.Error("%s: %v", file, err)
				failed++
				continue
			}
			ui.Debug("%s: ok (%s)", file, interp)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scripts have syntax errors", failed, len(files))
		}
		ui.Success("%d scripts checked", len(files))
		return nil
	},
}

// scriptsToCheck returns target itself when it is a file, or every .sh file below it
func scriptsToCheck(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != target && d.Name() == constants.DependenciesDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".sh" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkInterpreter, "interpreter", "i", "", "Check every script as sh, bash or zsh")
}
