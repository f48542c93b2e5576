package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ofir/maccabi-ics/internal/calendar"
	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/runner"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", errors.Newf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// BuildSummary reports one calendar build.
type BuildSummary struct {
	GeneratedAt  time.Time                  `json:"generated_at"`
	SeasonYear   int                        `json:"season_year"`
	Output       string                     `json:"output,omitempty"`
	Competitions []runner.CompetitionResult `json:"competitions"`
	EventCount   int                        `json:"event_count"`
	Events       []*fixture.Event           `json:"events"`
	// Diff is set when a snapshot directory is configured.
	Diff *fixture.DiffResult `json:"diff,omitempty"`
}

// WriteBuildSummary writes the summary in the specified format
func WriteBuildSummary(w io.Writer, s *BuildSummary, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeBuildText(w, s, verbose)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

// WriteCalendarSummary writes an inspected calendar in the specified format
func WriteCalendarSummary(w io.Writer, s *calendar.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeCalendarText(w, s)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeBuildText(w io.Writer, s *BuildSummary, verbose bool) error {
	for _, c := range s.Competitions {
		if c.Err != nil {
			fmt.Fprintf(w, "WARN: failed %s: %v\n", c.Competition, c.Err)
			continue
		}
		fmt.Fprintf(w, "Parsed %d events for %s, season %d\n", c.Events, c.Competition, s.SeasonYear)
	}

	if s.Output != "" {
		fmt.Fprintf(w, "Wrote %s with %d events\n", s.Output, s.EventCount)
	} else {
		fmt.Fprintf(w, "Built calendar with %d events\n", s.EventCount)
	}

	if verbose {
		for _, evt := range s.Events {
			fmt.Fprintf(w, "  %s\n", evt)
		}
	}

	if s.Diff == nil {
		return nil
	}
	if !s.Diff.HasChanges() {
		fmt.Fprintln(w, "No fixture changes since last run.")
		return nil
	}
	if len(s.Diff.Added) > 0 {
		fmt.Fprintf(w, "\nNew since last run (%d):\n", len(s.Diff.Added))
		for _, evt := range s.Diff.Added {
			fmt.Fprintf(w, "  NEW: %s\n", evt)
		}
	}
	if len(s.Diff.Removed) > 0 {
		fmt.Fprintf(w, "\nGone before being played (%d):\n", len(s.Diff.Removed))
		for _, evt := range s.Diff.Removed {
			fmt.Fprintf(w, "  GONE: %s\n", evt)
		}
	}
	return nil
}

func writeCalendarText(w io.Writer, s *calendar.Summary) error {
	fmt.Fprintf(w, "Calendar: %s\n", s.Name)
	fmt.Fprintf(w, "Product:  %s\n", s.ProductID)
	if len(s.Events) == 0 {
		fmt.Fprintln(w, "No events.")
		return nil
	}

	for _, evt := range s.Events {
		when := "unknown start"
		if !evt.Start.IsZero() {
			when = evt.Start.Format("2006-01-02 15:04")
		}
		line := fmt.Sprintf("%s  %s", when, evt.Summary)
		if evt.Location != "" {
			line += " @ " + evt.Location
		}
		fmt.Fprintf(w, "  %s\n", line)
		fmt.Fprintf(w, "       UID: %s\n", evt.UID)
	}
	fmt.Fprintf(w, "\nTotal: %d events\n", len(s.Events))
	return nil
}
