package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var timelineUser string

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Display the categorized activity timeline",
	Long: `Display daily-window activity as categorized events grouped by day, with
summary statistics, detected work patterns, and recommendations.

By default the whole team's stream is analyzed; narrow to one developer
with --user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.Refresh(cmd.Context()); err != nil {
			fmt.Printf("warning: serving last known records: %v\n", err)
		}

		analysis := Engine.TimelineAnalysis(timelineUser)

		fmt.Printf("== SUMMARY ==\n")
		fmt.Printf("  events: %d, productive hours: %.1f, momentum: %s, collaboration: %s\n",
			analysis.Summary.TotalEvents,
			analysis.Summary.ProductiveHours,
			analysis.Summary.OverallMomentum,
			analysis.Summary.CollaborationLevel)
		if len(analysis.Summary.FocusAreas) > 0 {
			fmt.Printf("  focus: %s\n", strings.Join(analysis.Summary.FocusAreas, ", "))
		}
		if len(analysis.Summary.TopTechnologies) > 0 {
			fmt.Printf("  technologies: %s\n", strings.Join(analysis.Summary.TopTechnologies, ", "))
		}

		fmt.Printf("\n== PATTERNS ==\n")
		fmt.Printf("  peak time: %s, work style: %s\n", analysis.Patterns.PeakTime, analysis.Patterns.WorkStyle)
		for _, c := range analysis.Patterns.Challenges {
			fmt.Printf("  challenge: %s\n", c)
		}
		for _, s := range analysis.Patterns.Strengths {
			fmt.Printf("  strength: %s\n", s)
		}

		if len(analysis.Recommendations) > 0 {
			fmt.Printf("\n== RECOMMENDATIONS ==\n")
			for _, r := range analysis.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}

		for _, day := range analysis.Days {
			fmt.Printf("\n== %s ==\n", day.Date)
			fmt.Printf("  %-6s %-14s %-14s %-9s %-12s %s\n", "TIME", "TYPE", "CATEGORY", "IMPACT", "STATUS", "TECH")
			for _, e := range day.Events {
				fmt.Printf("  %-6s %-14s %-14s %-9s %-12s %s\n",
					e.Time, e.Type, e.Category, e.Impact, e.Status, strings.Join(e.Technologies, ","))
			}
		}
		return nil
	},
}

func init() {
	timelineCmd.Flags().StringVar(&timelineUser, "user", "", "Analyze a single developer's stream")
	rootCmd.AddCommand(timelineCmd)
}
