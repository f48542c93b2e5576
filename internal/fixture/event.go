package fixture

import (
	"fmt"
	"time"
)

const (
	// HomeTeam is the label used for the tracked team in every title.
	HomeTeam = "Maccabi TLV"

	// DefaultTitle is used when no opponent could be recognized.
	DefaultTitle = HomeTeam + " – Game"

	// Duration is the fixed length of every game.
	Duration = 2 * time.Hour
)

// Competition is one of the leagues tracked by the source site.
type Competition struct {
	ID   int    `yaml:"id" json:"id" validate:"min=1"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

var (
	EuroLeague   = Competition{ID: 1, Name: "EuroLeague"}
	WinnerLeague = Competition{ID: 2, Name: "Winner League"}
)

// DefaultCompetitions returns the competitions fetched on every run, in fetch order.
func DefaultCompetitions() []Competition {
	return []Competition{EuroLeague, WinnerLeague}
}

func (c Competition) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.ID)
}

// Event is a single scheduled game.
type Event struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Title    string    `json:"title"`
	Location string    `json:"location,omitempty"`
}

// NewEvent creates an Event lasting Duration. An empty title falls back to DefaultTitle.
func NewEvent(start time.Time, title, location string) *Event {
	if title == "" {
		title = DefaultTitle
	}
	return &Event{
		Start:    start,
		End:      start.Add(Duration),
		Title:    title,
		Location: location,
	}
}

// Key identifies the logical game: two events with the same key are the same fixture.
func (e *Event) Key() string {
	return e.Start.Format(time.RFC3339) + "|" + e.Title
}

func (e *Event) String() string {
	if e.Location == "" {
		return fmt.Sprintf("%s %s", e.Start.Format("2006-01-02 15:04 MST"), e.Title)
	}
	return fmt.Sprintf("%s %s @ %s", e.Start.Format("2006-01-02 15:04 MST"), e.Title, e.Location)
}
