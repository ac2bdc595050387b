// Package cmd implements the CLI commands for spm
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	spmerrors "github.com/shellpm/spm/src/internal/errors"
	"github.com/shellpm/spm/src/internal/tui"
	"github.com/shellpm/spm/src/internal/ui"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "spm",
	Short:         "Shell Package Manager",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetVerbose(verbose)
	},
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	// A lone --version or -v; anything later may belong to a script under 'spm run'
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		versionCmd.Run(versionCmd, []string{})
		return
	}

	if err := rootCmd.Execute(); err != nil {
		spmerrors.Print(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output for debugging")

	// Subcommands keep cobra's help with their flags
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}
		_ = customUsage(cmd)
	})
}

func customUsage(cmd *cobra.Command) error {
	const tableWidth = 90

	header := tui.NewTable("")
	header.SetTitle(cmd.Short)
	header.HideHeader()
	header.SetMinWidth(tableWidth)
	header.AddRow("spm installs, runs and vendors packages of shell scripts.")
	header.AddRow("Packages are directories with a package.json manifest, installed under ~/.spm.")
	fmt.Println(header.Render())
	fmt.Println()

	table := tui.NewTable("Command", "Description")
	table.SetTitle("Available Commands")
	table.SetMinWidth(tableWidth)
	for _, c := range cmd.Commands() {
		if c.Hidden || c.Name() == "completion" || c.Name() == "help" {
			continue
		}
		table.AddRow(c.Name(), c.Short)
	}
	fmt.Println(table.Render())
	return nil
}
