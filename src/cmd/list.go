package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/store"
	"github.com/shellpm/spm/src/internal/tui"
	"github.com/shellpm/spm/src/internal/ui"
)

var listPaths bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long: `List every package installed in the spm root.

Examples:
  spm list
  spm list --paths    # Include install directories`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		packages, err := env.store().ScanInstalled()
		if err != nil {
			return err
		}
		if len(packages) == 0 {
			ui.Info("No packages installed")
			return nil
		}

		fmt.Println(tui.RenderPackages("Installed packages", packageRows(packages), listPaths))
		return nil
	},
}

func packageRows(packages []store.PackageMetadata) []tui.PackageRow {
	rows := make([]tui.PackageRow, 0, len(packages))
	for _, p := range packages {
		rows = append(rows, tui.PackageRow{
			Name:        p.Manifest.Name,
			Namespace:   p.Manifest.Namespace,
			Version:     p.Manifest.Version,
			Library:     p.Manifest.IsLibrary,
			Description: p.Manifest.Description,
			Path:        p.Dir,
		})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listPaths, "paths", false, "Show install directories")
}
