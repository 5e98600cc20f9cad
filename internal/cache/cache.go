// Package cache provides TTL-keyed memoization for expensive derivations
// such as digests, with an injectable clock so expiry is testable without
// real sleeps.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// Clock abstracts wall-clock access.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the real wall clock.
func SystemClock() Clock { return systemClock{} }

// DefaultTTL applies when Set is called with a non-positive TTL.
const DefaultTTL = 15 * time.Minute

// entry is one memoized payload with its expiry bounds.
type entry struct {
	payload   any
	createdAt time.Time
	expiresAt time.Time
}

// Store is a TTL cache safe for concurrent use. Reads are cheap; writes hold
// a short-lived exclusive lock. An entry is never returned after its expiry.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, payload any, ttl time.Duration)
	Has(key string) bool
	Clear()
	Len() int
}

type ttlStore struct {
	mu         sync.Mutex
	entries    map[string]entry
	clock      Clock
	defaultTTL time.Duration
}

// New creates a Store with the given clock and default TTL. A nil clock
// falls back to the system clock; a non-positive TTL falls back to DefaultTTL.
func New(clock Clock, defaultTTL time.Duration) Store {
	if clock == nil {
		clock = SystemClock()
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &ttlStore{
		entries:    make(map[string]entry),
		clock:      clock,
		defaultTTL: defaultTTL,
	}
}

// Get returns the payload for key if present and unexpired. An expired entry
// is evicted and reported as a miss.
func (s *ttlStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.clock.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Set stores payload under key with the given TTL (defaultTTL when ttl <= 0).
func (s *ttlStore) Set(key string, payload any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		payload:   payload,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Has reports whether an unexpired entry exists for key without mutating
// the store.
func (s *ttlStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	return !s.clock.Now().After(e.expiresAt)
}

// Clear wipes all entries.
func (s *ttlStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not.
func (s *ttlStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Fingerprint derives a stable cache key from an operation name and the set
// of record ids it analyzed. Id order does not matter.
func Fingerprint(operation string, recordIDs []string) string {
	ids := make([]string, len(recordIDs))
	copy(ids, recordIDs)
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, "\x00")))
	return operation + ":" + hex.EncodeToString(sum[:16])
}
