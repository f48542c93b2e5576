package cli

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ofir/maccabi-ics/internal/calendar"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
	SortByUID   SortOrder = "uid"
	SortNone    SortOrder = "none"
)

// sortEvents sorts inspected events based on the specified sort order
func sortEvents(events []calendar.EventSummary, sortOrder SortOrder) error {
	switch sortOrder {
	case SortNone:
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Summary), strings.ToLower(events[j].Summary)
			if ti != tj {
				return ti < tj
			}
			// If titles are equal, sort by date
			return compareByDate(events[i], events[j])
		})
	case SortByUID:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].UID < events[j].UID
		})
	default:
		return errors.Newf("invalid sort order: %s (must be date, title, uid or none)", sortOrder)
	}
	return nil
}

// compareByDate compares two events by their start
// Returns true if event i should come before event j
func compareByDate(i, j calendar.EventSummary) bool {
	if !i.Start.IsZero() && !j.Start.IsZero() && !i.Start.Equal(j.Start) {
		return i.Start.Before(j.Start)
	}

	// If only one start is known, put the known one first
	if !i.Start.IsZero() && j.Start.IsZero() {
		return true
	}
	if i.Start.IsZero() && !j.Start.IsZero() {
		return false
	}

	return strings.ToLower(i.Summary) < strings.ToLower(j.Summary)
}
