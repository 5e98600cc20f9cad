package core

import (
	"sort"
	"strings"
)

// truncate shortens s to at most limit runes, appending "..." when trimmed.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

// containsAny reports whether lowercased text contains any of the terms.
// Terms are expected to already be lowercase.
func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// countMatches counts how many distinct terms occur in lowercased text.
func countMatches(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

// extractMatches returns the distinct terms present in lowercased text,
// preserving vocabulary order.
func extractMatches(text string, terms []string) []string {
	var found []string
	seen := make(map[string]struct{})
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		if strings.Contains(text, t) {
			found = append(found, t)
			seen[t] = struct{}{}
		}
	}
	return found
}

// topK returns the k most frequent keys of counts, most frequent first.
// Ties break alphabetically so output is deterministic.
func topK(counts map[string]int, k int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > k {
		keys = keys[:k]
	}
	return keys
}

// displayName converts a user id like "jane_doe" into "Jane Doe".
func displayName(userID string) string {
	parts := strings.FieldsFunc(userID, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	if len(parts) == 0 {
		return userID
	}
	return strings.Join(parts, " ")
}
