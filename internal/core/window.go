package core

import (
	"sort"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// Default window spans. The recent window drives live status; the daily
// window drives totals and the timeline.
const (
	DefaultRecentWindowHours = 4
	DefaultDailyWindowHours  = 24
)

// UserWindows holds one developer's windowed record subsets, both sorted
// newest-first. Every record in Recent also appears in Daily.
type UserWindows struct {
	UserID string
	Recent []models.InteractionRecord
	Daily  []models.InteractionRecord
}

// Windower partitions flat record lists into per-user time windows.
// It is pure and synchronous: same records + same now yield the same output.
type Windower struct {
	recentSpan time.Duration
	dailySpan  time.Duration
}

// NewWindower creates a Windower with the given window widths in hours.
// Non-positive values fall back to the defaults.
func NewWindower(recentHours, dailyHours int) *Windower {
	if recentHours <= 0 {
		recentHours = DefaultRecentWindowHours
	}
	if dailyHours <= 0 {
		dailyHours = DefaultDailyWindowHours
	}
	return &Windower{
		recentSpan: time.Duration(recentHours) * time.Hour,
		dailySpan:  time.Duration(dailyHours) * time.Hour,
	}
}

// GroupByUser partitions records by user id. The groups are disjoint and
// their union equals the input set.
func GroupByUser(records []models.InteractionRecord) map[string][]models.InteractionRecord {
	groups := make(map[string][]models.InteractionRecord)
	for _, r := range records {
		groups[r.UserID] = append(groups[r.UserID], r)
	}
	return groups
}

// Partition groups records by user and derives the recent and daily windows
// relative to now. Users whose daily window is empty are excluded entirely:
// an inactive user produces no downstream state.
func (w *Windower) Partition(records []models.InteractionRecord, now time.Time) map[string]UserWindows {
	recentCutoff := now.Add(-w.recentSpan)
	dailyCutoff := now.Add(-w.dailySpan)

	result := make(map[string]UserWindows)
	for userID, group := range GroupByUser(records) {
		sorted := make([]models.InteractionRecord, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.After(sorted[j].Timestamp)
		})

		var daily, recent []models.InteractionRecord
		for _, r := range sorted {
			if r.Timestamp.After(dailyCutoff) {
				daily = append(daily, r)
				if r.Timestamp.After(recentCutoff) {
					recent = append(recent, r)
				}
			}
		}
		if len(daily) == 0 {
			continue
		}
		result[userID] = UserWindows{UserID: userID, Recent: recent, Daily: daily}
	}
	return result
}

// WindowFor derives the windows of a single user's records. Convenience for
// incremental updates that touch one user only.
func (w *Windower) WindowFor(userID string, records []models.InteractionRecord, now time.Time) (UserWindows, bool) {
	partition := w.Partition(records, now)
	uw, ok := partition[userID]
	return uw, ok
}
