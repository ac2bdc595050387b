package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shellpm/spm/src/internal/tui"
)

// Version can be set at build time using ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the spm version",
	Long:  `Display the current version of spm.`,
	Run: func(cmd *cobra.Command, args []string) {
		content := fmt.Sprintf("spm %s", tui.RenderVersion(Version))
		fmt.Println(tui.RenderBox(content))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
