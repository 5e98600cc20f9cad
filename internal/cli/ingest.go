package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	ingestUser      string
	ingestProject   string
	ingestQuery     string
	ingestResponse  string
	ingestCompleted bool
	ingestStdin     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest interaction records",
	Long: `Ingest one interaction record from flags, or a batch of JSONL records
from stdin with --stdin (one record object per line).

Each record is persisted to the store and immediately applied to the live
developer state.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if RecordStore == nil || Engine == nil {
			return fmt.Errorf("record store not initialized")
		}

		if ingestStdin {
			return ingestBatch(cmd)
		}

		if ingestUser == "" || ingestQuery == "" {
			return fmt.Errorf("--user and --query are required (or use --stdin)")
		}
		status := models.CompletionPending
		if ingestCompleted {
			status = models.CompletionCompleted
		}
		rec := models.InteractionRecord{
			ID:           uuid.NewString(),
			UserID:       ingestUser,
			ProjectID:    ingestProject,
			QueryText:    ingestQuery,
			ResponseText: ingestResponse,
			Timestamp:    time.Now().UTC(),
			Status:       status,
		}
		if err := RecordStore.InsertRecord(cmd.Context(), rec); err != nil {
			return fmt.Errorf("ingesting record: %w", err)
		}
		Engine.ApplyRecord(rec)
		fmt.Printf("Ingested %s for %s\n", rec.ID, rec.UserID)
		return nil
	},
}

// ingestBatch reads JSONL records from stdin. Malformed lines abort with the
// line number so bad feeds fail loudly instead of half-loading.
func ingestBatch(cmd *cobra.Command) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec models.InteractionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("parsing record on line %d: %w", lineNo, err)
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.Timestamp.IsZero() {
			rec.Timestamp = time.Now().UTC()
		}
		if rec.Status == "" {
			rec.Status = models.CompletionPending
		}

		if err := RecordStore.InsertRecord(cmd.Context(), rec); err != nil {
			return fmt.Errorf("ingesting record on line %d: %w", lineNo, err)
		}
		Engine.ApplyRecord(rec)
		count++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	fmt.Printf("Ingested %d records\n", count)
	return nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "Developer user id")
	ingestCmd.Flags().StringVar(&ingestProject, "project", "", "Project id")
	ingestCmd.Flags().StringVar(&ingestQuery, "query", "", "Query text")
	ingestCmd.Flags().StringVar(&ingestResponse, "response", "", "Assistant response text")
	ingestCmd.Flags().BoolVar(&ingestCompleted, "completed", false, "Mark the interaction completed")
	ingestCmd.Flags().BoolVar(&ingestStdin, "stdin", false, "Read JSONL records from stdin")
	rootCmd.AddCommand(ingestCmd)
}
