package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var teamProject string

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Display team metrics and work collisions",
	Long: `Display daily-window team metrics (interaction totals, active developers,
files in flight, success rate) and, when --project is given, detected
work collisions between developers in that project.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.Refresh(cmd.Context()); err != nil {
			fmt.Printf("warning: serving last known records: %v\n", err)
		}

		metrics := Engine.TeamMetrics()
		fmt.Printf("== TEAM (24h) ==\n")
		fmt.Printf("  interactions: %d\n", metrics.TotalInteractions24h)
		fmt.Printf("  active developers: %d\n", metrics.ActiveDevelopers)
		fmt.Printf("  files in flight: %d\n", metrics.FilesInFlight)
		fmt.Printf("  success rate: %.0f%%\n", metrics.AvgSuccessRate*100)

		if teamProject == "" {
			return nil
		}

		collisions := Engine.Collisions(teamProject)
		fmt.Printf("\n== COLLISIONS in %s ==\n", teamProject)
		if len(collisions) == 0 {
			fmt.Println("  none detected")
			return nil
		}
		for _, c := range collisions {
			fmt.Printf("  [%.0f%%] %s: %s and %s both touching %s\n",
				c.Confidence*100, c.Type, c.Users[0], c.Users[1], c.Resource)
			fmt.Printf("         %s\n", c.Suggestion)
		}
		return nil
	},
}

func init() {
	teamCmd.Flags().StringVar(&teamProject, "project", "", "Detect collisions within this project")
	rootCmd.AddCommand(teamCmd)
}
