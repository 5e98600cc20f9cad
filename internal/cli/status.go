package cli

import (
	"fmt"
	"strings"

	"github.com/codelens-hq/pulse/pkg/models"
	"github.com/spf13/cobra"
)

var statusUser string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display developer activity states",
	Long: `Display every active developer's live status, current tasks, and daily
interaction totals, grouped by activity status.

Optionally narrow to a single developer using --user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.Refresh(cmd.Context()); err != nil {
			fmt.Printf("warning: serving last known states: %v\n", err)
		}

		if statusUser != "" {
			state, ok := Engine.DeveloperState(statusUser)
			if !ok {
				fmt.Printf("No activity for %s in the daily window.\n", statusUser)
				return nil
			}
			printDeveloperState(state)
			return nil
		}

		states := Engine.DeveloperStates()
		if len(states) == 0 {
			fmt.Println("No developer activity in the daily window.")
			return nil
		}

		// Group by status, most urgent first.
		statusOrder := []models.ActivityStatus{
			models.StatusBlocked,
			models.StatusProblemSolving,
			models.StatusFlow,
			models.StatusIdle,
		}

		grouped := make(map[models.ActivityStatus][]models.DeveloperState)
		for _, s := range states {
			grouped[s.Status] = append(grouped[s.Status], s)
		}

		for _, status := range statusOrder {
			group := grouped[status]
			if len(group) == 0 {
				continue
			}
			fmt.Printf("== %s (%d) ==\n", strings.ToUpper(string(status)), len(group))
			for _, s := range group {
				printDeveloperState(s)
			}
			fmt.Println()
		}
		return nil
	},
}

// printDeveloperState prints one developer block with their task table.
func printDeveloperState(s models.DeveloperState) {
	fmt.Printf("  %s (%s)\n", s.DisplayName, s.ID)
	fmt.Printf("    %s\n", s.StatusMessage)
	fmt.Printf("    today: %d interactions, %d completed, last active %s\n",
		s.InteractionsToday, s.CompletedToday, s.LastActive.Format("15:04"))
	if len(s.CurrentTasks) > 0 {
		fmt.Printf("    %-8s %-45s %s\n", "PRI", "TASK", "ELAPSED")
		for _, t := range s.CurrentTasks {
			fmt.Printf("    %-8s %-45s %s\n", t.Priority, t.Title, t.Elapsed)
		}
	}
}

func init() {
	statusCmd.Flags().StringVar(&statusUser, "user", "", "Show a single developer's state")
	rootCmd.AddCommand(statusCmd)
}
