package fixture

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, israel)

	kept := NewEvent(time.Date(2025, 10, 28, 21, 15, 0, 0, israel), "Maccabi TLV vs Panathinaikos", "")
	added := NewEvent(time.Date(2025, 11, 2, 20, 0, 0, 0, israel), "Maccabi TLV vs Hapoel", "")
	moved := NewEvent(time.Date(2025, 10, 30, 20, 0, 0, 0, israel), "Maccabi TLV vs Olympiacos", "")
	played := NewEvent(time.Date(2025, 10, 15, 20, 0, 0, 0, israel), "Maccabi TLV vs Fenerbahce", "")

	previous := CreateSnapshot([]*Event{kept, moved, played}, now.Format(time.RFC3339))
	current := []*Event{kept, added}

	t.Run("finds added events", func(t *testing.T) {
		result := Diff(previous, current, now)

		if len(result.Added) != 1 || result.Added[0] != added {
			t.Errorf("Added = %v, want [%v]", result.Added, added)
		}
	})

	t.Run("finds removed future events only", func(t *testing.T) {
		result := Diff(previous, current, now)

		if len(result.Removed) != 1 {
			t.Fatalf("expected 1 removed event, got %d", len(result.Removed))
		}
		if result.Removed[0].Key() != moved.Key() {
			t.Errorf("Removed[0] = %v, want %v", result.Removed[0], moved)
		}
		if !result.HasChanges() {
			t.Error("HasChanges() = false, want true")
		}
	})

	t.Run("handles nil previous snapshot", func(t *testing.T) {
		result := Diff(nil, current, now)

		if len(result.Added) != 2 {
			t.Errorf("expected 2 added events, got %d", len(result.Added))
		}
		if len(result.Removed) != 0 {
			t.Errorf("expected 0 removed events, got %d", len(result.Removed))
		}
		if result.Added[0] != kept {
			t.Error("added events should be sorted by start")
		}
	})

	t.Run("no changes", func(t *testing.T) {
		result := Diff(CreateSnapshot(current, ""), current, now)

		if result.HasChanges() {
			t.Errorf("HasChanges() = true, added=%v removed=%v", result.Added, result.Removed)
		}
	})
}

func TestSnapshot_JSONKeysSurvive(t *testing.T) {
	evt := NewEvent(time.Date(2025, 10, 28, 21, 15, 0, 0, israel), "Maccabi TLV vs Partizan", "")
	snap := CreateSnapshot([]*Event{evt}, "2025-10-20T10:00:00Z")

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	result := Diff(&decoded, []*Event{evt}, time.Date(2025, 10, 20, 0, 0, 0, 0, israel))
	if result.HasChanges() {
		t.Error("decoded snapshot should match the same fixture")
	}
}
