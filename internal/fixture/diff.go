package fixture

import (
	"sort"
	"time"
)

// Snapshot represents the fixtures published by one run
type Snapshot struct {
	Events    map[string]*Event `json:"events"`     // keyed by Event.Key()
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make(map[string]*Event),
	}
}

// CreateSnapshot creates a snapshot from a list of events
func CreateSnapshot(events []*Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for _, evt := range events {
		snap.Events[evt.Key()] = evt
	}
	return snap
}

// DiffResult contains the results of comparing a snapshot with the current fixtures
type DiffResult struct {
	// Added are fixtures not present in the previous snapshot.
	Added   []*Event `json:"added"`
	// Removed are fixtures of the previous snapshot that are missing now
	// although they have not been played yet (rescheduled or cancelled).
	Removed []*Event `json:"removed"`
}

// HasChanges reports whether anything was added or removed.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Diff compares current fixtures against a previous snapshot.
// Previous fixtures that started at or before now are not reported as removed.
func Diff(previous *Snapshot, current []*Event, now time.Time) *DiffResult {
	result := &DiffResult{
		Added:   make([]*Event, 0),
		Removed: make([]*Event, 0),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	currentKeys := make(map[string]bool, len(current))
	for _, evt := range current {
		k := evt.Key()
		currentKeys[k] = true
		if _, exists := previous.Events[k]; !exists {
			result.Added = append(result.Added, evt)
		}
	}

	keys := make([]string, 0, len(previous.Events))
	for k := range previous.Events {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		evt := previous.Events[k]
		if currentKeys[k] || !evt.Start.After(now) {
			continue
		}
		result.Removed = append(result.Removed, evt)
	}

	// Sort for consistent output
	SortByStart(result.Added)
	SortByStart(result.Removed)

	return result
}
