package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Turn the current directory into a package",
	Long: `Create a package in the current directory, named after the directory.

Existing files are never overwritten; init fails if a package.json is already present.

Examples:
  spm init
  spm init --lib --namespace acme`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}
		return createPackage(dir, filepath.Base(dir))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	addCreateFlags(initCmd)
}
