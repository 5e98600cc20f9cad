package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsSince string
	metricsJSON  bool
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display pipeline metrics derived from the event log",
	Long: `Display pipeline metrics aggregated from the JSONL event log: refreshes,
ingested records, digest fallbacks, and store outages.

Use --since to bound the aggregation window (e.g. --since 24h).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics not available: event log is disabled")
		}

		window, err := time.ParseDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		m, err := MetricsCalc.Calculate(time.Now().UTC().Add(-window))
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if metricsJSON {
			out, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding metrics: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("== METRICS (last %s) ==\n", metricsSince)
		fmt.Printf("  refreshes completed: %d\n", m.RefreshesCompleted)
		fmt.Printf("  records ingested:    %d\n", m.RecordsIngested)
		fmt.Printf("  digest fallbacks:    %d\n", m.DigestFallbacks)
		fmt.Printf("  store outages:       %d\n", m.StoreOutages)
		fmt.Printf("  events total:        %d\n", m.EventCount)
		for user, n := range m.IngestsByUser {
			fmt.Printf("  ingests %-12s %d\n", user+":", n)
		}
		return nil
	},
}

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "since", "24h", "Aggregation window as a Go duration")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Print metrics as JSON")
	rootCmd.AddCommand(metricsCmd)
}
