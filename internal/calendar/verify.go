package calendar

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/cockroachdb/errors"
)

// ErrVerify is returned when a serialized calendar does not read back as expected.
var ErrVerify = errors.New("calendar verification failed")

const propertyCalName = "X-WR-CALNAME"

// Summary describes a parsed calendar.
type Summary struct {
	ProductID string         `json:"product_id"`
	Name      string         `json:"name"`
	Events    []EventSummary `json:"events"`
}

// EventSummary describes one VEVENT of a parsed calendar.
type EventSummary struct {
	UID      string    `json:"uid"`
	Summary  string    `json:"summary"`
	Location string    `json:"location,omitempty"`
	TZID     string    `json:"tzid,omitempty"`
	Start    time.Time `json:"start"`
}

// Inspect parses an iCalendar stream.
func Inspect(r io.Reader) (*Summary, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing calendar")
	}

	out := &Summary{Events: make([]EventSummary, 0)}
	for _, p := range cal.CalendarProperties {
		switch p.IANAToken {
		case string(ical.PropertyProductId):
			out.ProductID = p.Value
		case propertyCalName:
			out.Name = p.Value
		}
	}

	for _, ve := range cal.Events() {
		var es EventSummary
		if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
			es.UID = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
			es.Summary = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
			es.Location = p.Value
		}
		if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
			if tz := p.ICalParameters["TZID"]; len(tz) > 0 {
				es.TZID = tz[0]
			}
		}
		if start, err := ve.GetStartAt(); err == nil {
			es.Start = start
		}
		out.Events = append(out.Events, es)
	}
	return out, nil
}

// Verify parses payload back and checks it holds wantEvents events, each
// with a UID and a TZID-tagged start.
func Verify(payload string, wantEvents int) error {
	summary, err := Inspect(strings.NewReader(payload))
	if err != nil {
		return errors.Mark(err, ErrVerify)
	}
	if got := len(summary.Events); got != wantEvents {
		return errors.Wrapf(ErrVerify, "calendar holds %d events, want %d", got, wantEvents)
	}
	for i, es := range summary.Events {
		if es.UID == "" {
			return errors.Wrapf(ErrVerify, "event %d has no UID", i)
		}
		if es.TZID == "" {
			return errors.Wrapf(ErrVerify, "event %d (%s) has no TZID on DTSTART", i, es.UID)
		}
	}
	return nil
}
