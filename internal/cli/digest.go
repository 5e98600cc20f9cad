package cli

import (
	"encoding/json"
	"fmt"

	"github.com/codelens-hq/pulse/pkg/models"
	"github.com/spf13/cobra"
)

var (
	digestJSON    bool
	digestNoModel bool
)

var digestCmd = &cobra.Command{
	Use:   "digest <user-id>",
	Short: "Generate a narrative digest for one developer",
	Long: `Generate the insight digest for one developer from their daily window.

The model path is used when an LLM endpoint is configured and enabled;
otherwise (or on any model failure) a deterministic fallback digest is
produced. Results are cached; an unchanged record set within the cache TTL
returns the cached digest.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}
		if err := Engine.Refresh(cmd.Context()); err != nil {
			fmt.Printf("warning: serving last known records: %v\n", err)
		}

		opts := models.DigestOptions{}
		if digestNoModel {
			off := false
			opts.Enabled = &off
		}

		digest, err := Engine.Digest(cmd.Context(), args[0], opts)
		if err != nil {
			return fmt.Errorf("generating digest: %w", err)
		}

		if digestJSON {
			out, err := json.MarshalIndent(digest, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding digest: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Digest for %s (%s, confidence %.2f)\n\n", digest.UserID, digest.Source, digest.ConfidenceScore)
		fmt.Printf("Focus:      %s\n", digest.RecentFocus)
		fmt.Printf("Summary:    %s\n", digest.ActivitySummary)
		fmt.Printf("Momentum:   %s\n", digest.CurrentMomentum)
		fmt.Printf("Depth:      %s\n", digest.TechnicalDepth)
		fmt.Printf("Trajectory: %s\n", digest.LearningTrajectory)
		fmt.Printf("Approach:   %s\n", digest.ProblemSolvingApproach)
		fmt.Printf("Collab:     %s\n", digest.CollaborationPatterns)
		printDigestList("Learnings", digest.KeyLearnings)
		printDigestList("Highlights", digest.ProgressHighlights)
		printDigestList("Growth", digest.GrowthAreas)
		return nil
	},
}

func printDigestList(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}

func init() {
	digestCmd.Flags().BoolVar(&digestJSON, "json", false, "Print the digest as JSON")
	digestCmd.Flags().BoolVar(&digestNoModel, "no-model", false, "Skip the model path and use the fallback builder")
	rootCmd.AddCommand(digestCmd)
}
