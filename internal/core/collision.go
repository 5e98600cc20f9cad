package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// Collision confidence levels. A shared file is a stronger signal than a
// shared feature area.
const (
	fileCollisionConfidence    = 0.9
	featureCollisionConfidence = 0.7
)

// CollisionDetector finds pairs of developers touching the same files or
// feature areas within a project's recent sessions.
type CollisionDetector struct{}

// NewCollisionDetector creates a CollisionDetector.
func NewCollisionDetector() *CollisionDetector {
	return &CollisionDetector{}
}

// Detect reports at most one collision per user pair for sessions in the
// given project that ended after cutoff. Pairs are examined in sorted user
// order so output is deterministic.
func (d *CollisionDetector) Detect(sessions []models.ConversationSession, projectID string, cutoff, now time.Time) []models.Collision {
	byUser := make(map[string][]models.ConversationSession)
	for _, s := range sessions {
		if s.ProjectID != projectID || !s.EndTime.After(cutoff) {
			continue
		}
		byUser[s.UserID] = append(byUser[s.UserID], s)
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	var collisions []models.Collision
	for i, u1 := range users {
		for _, u2 := range users[i+1:] {
			if c, ok := checkPair(byUser[u1], byUser[u2], u1, u2, now); ok {
				collisions = append(collisions, c)
			}
		}
	}
	return collisions
}

// checkPair looks for the first file overlap, then feature overlap, between
// two users' sessions.
func checkPair(s1, s2 []models.ConversationSession, u1, u2 string, now time.Time) (models.Collision, bool) {
	files1, features1 := collectResources(s1)
	files2, features2 := collectResources(s2)

	if shared := firstShared(files1, files2); shared != "" {
		return models.Collision{
			Type:       models.CollisionFile,
			Users:      []string{u1, u2},
			Resource:   shared,
			Confidence: fileCollisionConfidence,
			DetectedAt: now,
			Suggestion: fmt.Sprintf("Coordinate work on %s", shared),
		}, true
	}
	if shared := firstShared(features1, features2); shared != "" {
		return models.Collision{
			Type:       models.CollisionFeature,
			Users:      []string{u1, u2},
			Resource:   shared,
			Confidence: featureCollisionConfidence,
			DetectedAt: now,
			Suggestion: fmt.Sprintf("Coordinate %s development", shared),
		}, true
	}
	return models.Collision{}, false
}

func collectResources(sessions []models.ConversationSession) (files, features map[string]struct{}) {
	files = make(map[string]struct{})
	features = make(map[string]struct{})
	for _, s := range sessions {
		for _, f := range s.FilesMentioned {
			files[f] = struct{}{}
		}
		for _, f := range s.FeaturesDiscussed {
			features[f] = struct{}{}
		}
	}
	return files, features
}

// firstShared returns the alphabetically first element present in both sets,
// or "" when the sets are disjoint.
func firstShared(a, b map[string]struct{}) string {
	var shared []string
	for k := range a {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		}
	}
	if len(shared) == 0 {
		return ""
	}
	sort.Strings(shared)
	return shared[0]
}
