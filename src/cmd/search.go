package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/tui"
	"github.com/shellpm/spm/src/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords>",
	Short: "Search installed packages by keyword",
	Long: `Rank installed packages against comma-separated keywords.

Keywords are matched against the words of package names and namespaces.

Examples:
  spm search web
  spm search http,client`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		query := strings.Join(args, ",")
		s := env.store()
		results, err := s.KeywordSearch(query)
		if err != nil {
			return err
		}

		if len(results) == 0 {
			ui.Info("No packages match %q", query)
			if suggestions := s.Suggest(query, 3); len(suggestions) > 0 {
				ui.Info("Did you mean: %s", strings.Join(suggestions, ", "))
			}
			return nil
		}

		fmt.Println(tui.RenderPackages(fmt.Sprintf("Matches for %q", query), packageRows(results), false))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
