package scraper

import (
	"regexp"
	"strings"

	"github.com/ofir/maccabi-ics/internal/fixture"
)

const (
	HomeVenue = "Menora Mivtachim Arena, Tel Aviv"
	AwayVenue = "Aleksandar Nikolic Hall, Belgrade"
)

var (
	euroLeaguePattern   = regexp.MustCompile(`(?i)Euro ?League|יורוליג|EUROLEAGUE`)
	winnerLeaguePattern = regexp.MustCompile(`(?i)Winner|ליגת העל|Isra(el)? League|Ligat|League Cup|State Cup`)

	// "... Vs Panathinaikos" anywhere in the neighborhood.
	versusPattern = regexp.MustCompile(`(?i)Vs\s+([A-Za-z \-’'.]+)`)
	// "Maccabi Rapyd TA  vs  Panathinaikos"; case-sensitive on purpose, V alone is a separator.
	homeVersusPattern = regexp.MustCompile(`Maccabi[ A-Za-z]*\s*(?:vs|VS|V)\s*([A-Za-z \-’'.]+)`)

	homeVenuePattern = regexp.MustCompile(`(?i)Menora|היכל מנורה|Yad Eliyahu|Tel Aviv`)
	awayVenuePattern = regexp.MustCompile(`(?i)Belgrade|Stark|Pionir|Aleksandar Nikolic|ניקוליץ|בלגרד`)
)

// Classification is what the classifier recognized in a neighborhood.
// Empty fields were not recognized.
type Classification struct {
	Competition string
	Opponent    string
	Venue       string
}

// Classify runs the competition, opponent and venue heuristics over text.
func Classify(text string) Classification {
	return Classification{
		Competition: classifyCompetition(text),
		Opponent:    classifyOpponent(text),
		Venue:       classifyVenue(text),
	}
}

func classifyCompetition(text string) string {
	switch {
	case euroLeaguePattern.MatchString(text):
		return fixture.EuroLeague.Name
	case winnerLeaguePattern.MatchString(text):
		return fixture.WinnerLeague.Name
	}
	return ""
}

func classifyOpponent(text string) string {
	for _, pat := range []*regexp.Regexp{versusPattern, homeVersusPattern} {
		if m := pat.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func classifyVenue(text string) string {
	switch {
	case homeVenuePattern.MatchString(text):
		return HomeVenue
	case awayVenuePattern.MatchString(text):
		return AwayVenue
	}
	return ""
}

// Title builds the event title. A captured opponent that already names the
// home team is taken to hold both teams and is kept verbatim.
func (c Classification) Title() string {
	title := fixture.DefaultTitle
	if c.Opponent != "" {
		if strings.Contains(c.Opponent, "Maccabi") {
			title = c.Opponent + " vs " + fixture.HomeTeam
		} else {
			title = fixture.HomeTeam + " vs " + c.Opponent
		}
	}
	if c.Competition != "" {
		title += " (" + c.Competition + ")"
	}
	return title
}
