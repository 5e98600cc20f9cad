package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codelens-hq/pulse/pkg/models"
)

// snapshotFile is the top-level structure of states.yaml.
type snapshotFile struct {
	Version string                  `yaml:"version"`
	SavedAt time.Time               `yaml:"saved_at"`
	States  []models.DeveloperState `yaml:"states"`
}

// SnapshotStore persists the last computed developer states as YAML so a
// restart or record store outage serves stale data instead of nothing.
type SnapshotStore struct {
	mu       sync.Mutex
	basePath string
}

// NewSnapshotStore creates a SnapshotStore writing states.yaml in the given
// base directory.
func NewSnapshotStore(basePath string) *SnapshotStore {
	return &SnapshotStore{basePath: basePath}
}

func (s *SnapshotStore) filePath() string {
	return filepath.Join(s.basePath, "states.yaml")
}

// SaveStates writes the states atomically: temp file first, then rename, so
// a crash mid-write never leaves a torn snapshot.
func (s *SnapshotStore) SaveStates(states []models.DeveloperState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := yaml.Marshal(snapshotFile{
		Version: "1.0",
		SavedAt: time.Now().UTC(),
		States:  states,
	})
	if err != nil {
		return fmt.Errorf("marshaling states snapshot: %w", err)
	}

	tmp := s.filePath() + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("writing states snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.filePath()); err != nil {
		return fmt.Errorf("replacing states snapshot: %w", err)
	}
	return nil
}

// LoadStates reads the last snapshot. A missing file yields an empty slice,
// not an error.
func (s *SnapshotStore) LoadStates() ([]models.DeveloperState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading states snapshot: %w", err)
	}

	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing states snapshot: %w", err)
	}
	return file.States, nil
}
