// Package cmd provides the command-line interface for the deltacycle demo.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deltacycle-demo",
	Short: "deltacycle-demo drives small example programs on top of deltacycle.",
	Long: `deltacycle-demo drives small example programs on top of deltacycle ` +
		`to exercise its timers and microtask queue from the command line.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
