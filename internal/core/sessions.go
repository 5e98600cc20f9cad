package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// DefaultSessionGapMinutes is the inactivity gap that splits two sessions.
const DefaultSessionGapMinutes = 30

// maxFilesPerSession bounds the files-mentioned list of one session.
const maxFilesPerSession = 10

// SessionGrouper splits each developer's interactions into conversation
// sessions on inactivity gaps and annotates each session with extracted
// files, features, and success/stuck indicator counts.
type SessionGrouper struct {
	gap time.Duration
}

// NewSessionGrouper creates a SessionGrouper with the given gap in minutes.
// Non-positive values fall back to DefaultSessionGapMinutes.
func NewSessionGrouper(gapMinutes int) *SessionGrouper {
	if gapMinutes <= 0 {
		gapMinutes = DefaultSessionGapMinutes
	}
	return &SessionGrouper{gap: time.Duration(gapMinutes) * time.Minute}
}

// Group partitions records into per-user/per-project sessions. Sessions are
// returned ordered by user, project, then start time.
func (g *SessionGrouper) Group(records []models.InteractionRecord) []models.ConversationSession {
	type key struct{ user, project string }
	byScope := make(map[key][]models.InteractionRecord)
	for _, r := range records {
		k := key{r.UserID, r.ProjectID}
		byScope[k] = append(byScope[k], r)
	}

	keys := make([]key, 0, len(byScope))
	for k := range byScope {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].user != keys[j].user {
			return keys[i].user < keys[j].user
		}
		return keys[i].project < keys[j].project
	})

	var sessions []models.ConversationSession
	for _, k := range keys {
		scoped := byScope[k]
		sort.SliceStable(scoped, func(i, j int) bool {
			return scoped[i].Timestamp.Before(scoped[j].Timestamp)
		})

		var current []models.InteractionRecord
		counter := 1
		for _, rec := range scoped {
			if len(current) > 0 && rec.Timestamp.Sub(current[len(current)-1].Timestamp) > g.gap {
				sessions = append(sessions, buildSession(current, k.user, k.project, counter))
				counter++
				current = nil
			}
			current = append(current, rec)
		}
		if len(current) > 0 {
			sessions = append(sessions, buildSession(current, k.user, k.project, counter))
		}
	}
	return sessions
}

// buildSession annotates one contiguous run of interactions.
func buildSession(interactions []models.InteractionRecord, userID, projectID string, num int) models.ConversationSession {
	start := interactions[0].Timestamp
	end := interactions[len(interactions)-1].Timestamp
	duration := int(end.Sub(start).Minutes())
	if duration < 1 {
		duration = 1
	}

	var b strings.Builder
	for _, rec := range interactions {
		b.WriteString(rec.QueryText)
		b.WriteString(" ")
		b.WriteString(rec.ResponseText)
		b.WriteString(" ")
	}
	text := b.String()
	lower := strings.ToLower(text)

	return models.ConversationSession{
		SessionID:         fmt.Sprintf("%s_%s_%s_%d", userID, projectID, start.UTC().Format("20060102_150405"), num),
		UserID:            userID,
		ProjectID:         projectID,
		Interactions:      interactions,
		StartTime:         start,
		EndTime:           end,
		DurationMinutes:   duration,
		FilesMentioned:    extractFiles(text),
		FeaturesDiscussed: extractMatches(lower, featureVocabulary),
		SuccessIndicators: countOccurrences(lower, successIndicators),
		StuckIndicators:   countOccurrences(lower, stuckIndicators),
	}
}

// extractFiles collects distinct file mentions, paths first, capped.
func extractFiles(text string) []string {
	var files []string
	seen := make(map[string]struct{})
	add := func(matches []string) {
		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	add(filePathPattern.FindAllString(text, -1))
	add(fileNamePattern.FindAllString(text, -1))
	if len(files) > maxFilesPerSession {
		files = files[:maxFilesPerSession]
	}
	return files
}

// countOccurrences sums every occurrence of every indicator in text.
func countOccurrences(text string, indicators []string) int {
	total := 0
	for _, ind := range indicators {
		total += strings.Count(text, ind)
	}
	return total
}
