// Package runner fetches every configured competition and merges the
// upcoming games into one chronological list.
package runner

import (
	"context"
	"time"

	"github.com/ofir/maccabi-ics/internal/fixture"
	"github.com/ofir/maccabi-ics/internal/logger"
	"github.com/ofir/maccabi-ics/internal/scraper"
)

// SeasonFetcher fetches the fixture page of one competition.
type SeasonFetcher interface {
	FetchSeason(ctx context.Context, c fixture.Competition, year int) (*scraper.Page, error)
}

// Options configures a Runner.
type Options struct {
	Competitions []fixture.Competition
	Location     *time.Location
	Radius       int
	MaxEvents    int
}

// CompetitionResult is the outcome of one competition.
type CompetitionResult struct {
	Competition fixture.Competition `json:"competition"`
	Events      int                 `json:"events"`
	Err         error               `json:"-"`
	Error       string              `json:"error,omitempty"`
}

// Result is the outcome of one run.
type Result struct {
	Now          time.Time           `json:"now"`
	SeasonYear   int                 `json:"season_year"`
	Competitions []CompetitionResult `json:"competitions"`
	Events       []*fixture.Event    `json:"events"`
}

// Failed returns the number of competitions that could not be fetched or parsed.
func (r *Result) Failed() int {
	n := 0
	for _, c := range r.Competitions {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Runner orchestrates a build across competitions.
type Runner struct {
	fetcher SeasonFetcher
	opts    Options
}

// New creates a Runner. Empty Competitions means fixture.DefaultCompetitions.
func New(fetcher SeasonFetcher, opts Options) *Runner {
	if len(opts.Competitions) == 0 {
		opts.Competitions = fixture.DefaultCompetitions()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Runner{fetcher: fetcher, opts: opts}
}

// Run fetches the competitions one after another in configured order. A
// competition that fails is logged and contributes nothing; the others still
// run. now is shared by every competition.
func (r *Runner) Run(ctx context.Context, now time.Time) *Result {
	now = now.In(r.opts.Location)
	result := &Result{
		Now:          now,
		SeasonYear:   fixture.SeasonYear(now),
		Competitions: make([]CompetitionResult, 0, len(r.opts.Competitions)),
	}

	builder := scraper.NewBuilder(scraper.BuildOptions{
		Location:  r.opts.Location,
		Now:       now,
		Radius:    r.opts.Radius,
		MaxEvents: r.opts.MaxEvents,
	})

	lists := make([][]*fixture.Event, 0, len(r.opts.Competitions))
	for _, c := range r.opts.Competitions {
		page, err := r.fetcher.FetchSeason(ctx, c, result.SeasonYear)
		if err != nil {
			logger.IncrCounter("fetch.failed")
			logger.Warn("Skipping competition", logger.Fields{
				"competition": c.Name,
				"season_year": result.SeasonYear,
			}, err)
			result.Competitions = append(result.Competitions, CompetitionResult{
				Competition: c,
				Err:         err,
				Error:       err.Error(),
			})
			continue
		}

		events := builder.Build(page)
		logger.Info("Parsed fixture page", logger.Fields{
			"competition": c.Name,
			"season_year": result.SeasonYear,
			"events":      len(events),
		})
		result.Competitions = append(result.Competitions, CompetitionResult{
			Competition: c,
			Events:      len(events),
		})
		lists = append(lists, events)
	}

	result.Events = fixture.Merge(lists...)
	logger.SetGauge("events.total", float64(len(result.Events)))
	return result
}
