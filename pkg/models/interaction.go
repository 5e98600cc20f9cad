package models

import "time"

// CompletionStatus indicates whether the assistant has answered an interaction.
type CompletionStatus string

const (
	CompletionPending   CompletionStatus = "pending"
	CompletionCompleted CompletionStatus = "completed"
)

// InteractionRecord represents one query/response turn between a developer
// and a coding assistant. Records are created by the store and are immutable
// once fetched; the engine never mutates them.
type InteractionRecord struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	ProjectID    string           `json:"project_id"`
	QueryText    string           `json:"query_text"`
	ResponseText string           `json:"response_text,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
	Status       CompletionStatus `json:"status"`
}

// Completed reports whether the interaction has a finished response.
func (r InteractionRecord) Completed() bool {
	return r.Status == CompletionCompleted
}

// RecordFilter specifies criteria for fetching interaction records.
// All specified fields use AND logic.
type RecordFilter struct {
	UserID    string
	ProjectID string
	From      *time.Time
	To        *time.Time
	Limit     int
}
