package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse - live insight into developer/assistant activity",
	Long: `Pulse analyzes the interaction stream between developers and their AI
coding assistants. It classifies each developer's live activity status,
extracts their current tasks, builds activity timelines, and generates
narrative digests of recent work.

It provides CLI commands for ingesting interaction records, inspecting
developer states, and serving the data to dashboards and MCP clients.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pulse %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
