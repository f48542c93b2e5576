package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ofir/maccabi-ics/internal/fixture"
)

const snapshotFile = "snapshot.json"

// WriteCalendar writes the serialized calendar to path as UTF-8, creating
// parent directories as needed.
func WriteCalendar(path, payload string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		return errors.Wrap(err, "writing calendar")
	}
	return nil
}

// Storage handles persistence of fixture snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "getting home directory")
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// SnapshotPath returns the path to the snapshot file
func (s *Storage) SnapshotPath() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// LoadSnapshot loads the last saved snapshot. A missing file yields an empty snapshot.
func (s *Storage) LoadSnapshot() (*fixture.Snapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			// No previous snapshot, return empty one
			return fixture.NewSnapshot(), nil
		}
		return nil, errors.Wrap(err, "reading snapshot")
	}

	var snapshot fixture.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "parsing snapshot")
	}

	// Ensure Events map is initialized
	if snapshot.Events == nil {
		snapshot.Events = make(map[string]*fixture.Event)
	}

	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk, stamping it with updatedAt.
func (s *Storage) SaveSnapshot(snapshot *fixture.Snapshot, updatedAt time.Time) error {
	snapshot.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}

	if err := os.WriteFile(s.SnapshotPath(), data, 0644); err != nil {
		return errors.Wrap(err, "writing snapshot")
	}

	return nil
}

// SaveEvents creates and saves a snapshot from a list of events
func (s *Storage) SaveEvents(events []*fixture.Event, updatedAt time.Time) error {
	return s.SaveSnapshot(fixture.CreateSnapshot(events, ""), updatedAt)
}
