// Package cmd wires the dockhand CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dockhand",
	Short: "terminal admin console for the Dockhand container platform",
	Long: `dockhand - terminal admin console for the Dockhand container platform
  - dockhand palette → interactive search across projects, services, routes and pages
  - dockhand search  → one-shot search from scripts and pipelines`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
