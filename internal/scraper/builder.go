package scraper

import (
	"time"

	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/logger"
)

// Candidate is a date-looking substring of a page and the text around it.
type Candidate struct {
	Raw          string
	Neighborhood string
}

// BuildOptions configures a Builder.
type BuildOptions struct {
	// Location is the venue timezone every kickoff is read in.
	Location *time.Location
	// Now is the reference instant; only games starting after it are kept.
	Now time.Time
	// Radius is the neighborhood radius in bytes. Zero means DefaultRadius.
	Radius int
	// MaxEvents caps the result. Zero means fixture.MaxEvents.
	MaxEvents int
}

// Builder turns fixture pages into events.
type Builder struct {
	loc       *time.Location
	now       time.Time
	radius    int
	maxEvents int
}

// NewBuilder creates a Builder. A nil Location means UTC.
func NewBuilder(opts BuildOptions) *Builder {
	b := &Builder{
		loc:       opts.Location,
		now:       opts.Now,
		radius:    opts.Radius,
		maxEvents: opts.MaxEvents,
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.radius <= 0 {
		b.radius = DefaultRadius
	}
	if b.maxEvents <= 0 {
		b.maxEvents = fixture.MaxEvents
	}
	return b
}

// Candidates lists the page's candidate dates in lexicographic order with their neighborhoods.
func (b *Builder) Candidates(page *Page) []Candidate {
	raws := FindCandidateDates(page.Text)
	out := make([]Candidate, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Candidate{
			Raw:          raw,
			Neighborhood: Neighbors(page.Markup, raw, b.radius),
		})
	}
	return out
}

// Build extracts the upcoming games of page, deduplicated by (start, title),
// sorted by start and capped.
func (b *Builder) Build(page *Page) []*fixture.Event {
	candidates := b.Candidates(page)
	logger.AddCounter("candidates.found", int64(len(candidates)))

	events := make([]*fixture.Event, 0, len(candidates))
	for _, c := range candidates {
		if evt := b.event(c); evt != nil {
			events = append(events, evt)
		}
	}

	unique := fixture.Dedupe(events)
	logger.AddCounter("events.duplicate", int64(len(events)-len(unique)))

	fixture.SortByStart(unique)
	return fixture.Limit(unique, b.maxEvents)
}

// event builds the Event for one candidate, or nil when it is unparseable or not upcoming.
func (b *Builder) event(c Candidate) *fixture.Event {
	hour, minute := FindTime(c.Neighborhood)
	start, ok := ParseStart(c.Raw, hour, minute, b.loc)
	if !ok {
		logger.IncrCounter("candidates.unparseable")
		logger.Debug("Discarding unparseable candidate", logger.Fields{"candidate": c.Raw})
		return nil
	}
	if !start.After(b.now) {
		logger.IncrCounter("candidates.past")
		return nil
	}

	cls := Classify(c.Neighborhood)
	return fixture.NewEvent(start, cls.Title(), cls.Venue)
}
