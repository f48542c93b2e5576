package fixture

import "sort"

// MaxEvents caps a single parse pass against runaway false-positive matches.
const MaxEvents = 200

// Dedupe drops events whose Key was already seen. The first occurrence wins
// and relative order is preserved.
func Dedupe(events []*Event) []*Event {
	seen := make(map[string]bool, len(events))
	unique := make([]*Event, 0, len(events))
	for _, evt := range events {
		k := evt.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, evt)
	}
	return unique
}

// SortByStart orders events chronologically. Ties keep their input order.
func SortByStart(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// Limit truncates events to at most n entries.
func Limit(events []*Event, n int) []*Event {
	if n >= 0 && len(events) > n {
		return events[:n]
	}
	return events
}

// Merge combines event lists, deduplicates across them and sorts the result.
// On duplicates the copy from the earliest list is kept.
func Merge(lists ...[]*Event) []*Event {
	var all []*Event
	for _, l := range lists {
		all = append(all, l...)
	}
	all = Dedupe(all)
	SortByStart(all)
	return all
}
