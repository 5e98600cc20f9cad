// Package storage provides the persistence layer for Pulse: the SQLite
// interaction record store and the YAML state snapshot store.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codelens-hq/pulse/pkg/models"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing records; the periodic refresh
// repairs any gap.
const subscriberBuffer = 64

const recordSchema = `
CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	project_id TEXT NOT NULL DEFAULT '',
	query_text TEXT NOT NULL,
	response_text TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending'
);
CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions(user_id);
CREATE INDEX IF NOT EXISTS idx_interactions_project ON interactions(project_id);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);
`

// SQLiteRecordStore persists interaction records in a SQLite database and
// fans inserted records out to in-process subscribers.
type SQLiteRecordStore struct {
	db *sql.DB

	mu          sync.Mutex
	subscribers map[int]chan models.InteractionRecord
	nextSubID   int
}

// NewSQLiteRecordStore opens (and creates if needed) the record database at
// dbPath.
func NewSQLiteRecordStore(dbPath string) (*SQLiteRecordStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening record db: %w", err)
	}
	if _, err := db.Exec(recordSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying record schema: %w", err)
	}
	return &SQLiteRecordStore{
		db:          db,
		subscribers: make(map[int]chan models.InteractionRecord),
	}, nil
}

// FetchRecords returns records matching the filter, newest first. All set
// filter fields combine with AND.
func (s *SQLiteRecordStore) FetchRecords(ctx context.Context, filter models.RecordFilter) ([]models.InteractionRecord, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.ProjectID != "" {
		conds = append(conds, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.From != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, filter.From.UTC().Format(time.RFC3339Nano))
	}
	if filter.To != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, filter.To.UTC().Format(time.RFC3339Nano))
	}

	query := "SELECT id, user_id, project_id, query_text, response_text, timestamp, status FROM interactions"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying interactions: %w", err)
	}
	defer rows.Close()

	var records []models.InteractionRecord
	for rows.Next() {
		var (
			rec models.InteractionRecord
			ts  string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ProjectID, &rec.QueryText, &rec.ResponseText, &ts, &rec.Status); err != nil {
			return nil, fmt.Errorf("scanning interaction row: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp of record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interaction rows: %w", err)
	}
	return records, nil
}

// InsertRecord appends one record and notifies subscribers. Timestamps are
// stored as RFC3339 UTC so lexical order matches time order.
func (s *SQLiteRecordStore) InsertRecord(ctx context.Context, rec models.InteractionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("inserting record: id must not be empty")
	}
	if rec.UserID == "" {
		return fmt.Errorf("inserting record %s: user_id must not be empty", rec.ID)
	}
	if rec.Status == "" {
		rec.Status = models.CompletionPending
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO interactions (id, user_id, project_id, query_text, response_text, timestamp, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.UserID, rec.ProjectID, rec.QueryText, rec.ResponseText,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), string(rec.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}

	s.notify(rec)
	return nil
}

// notify fans the record out without blocking. A full subscriber drops the
// record rather than stalling the writer.
func (s *SQLiteRecordStore) notify(rec models.InteractionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- rec:
		default:
		}
	}
}

// Subscribe returns a channel yielding records inserted after the call.
// The channel closes when ctx is done.
func (s *SQLiteRecordStore) Subscribe(ctx context.Context) (<-chan models.InteractionRecord, error) {
	ch := make(chan models.InteractionRecord, subscriberBuffer)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// Close closes the database. Subscriber channels are left to their context
// goroutines.
func (s *SQLiteRecordStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing record db: %w", err)
	}
	return nil
}
