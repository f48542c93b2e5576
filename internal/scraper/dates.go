package scraper

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Date notations recognized in page text, in collection order. Spelled dates
// also accept Unicode space separators such as the no-break space of &nbsp;.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),                      // 28/10/2025
	regexp.MustCompile(`\b([A-Za-z]+)[\s\p{Zs}](\d{1,2}),[\s\p{Zs}](\d{4})\b`), // October 3, 2025
	regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`),                    // 28.10.2025
}

var timePattern = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)

// Anchored forms used to parse a candidate, in priority order.
var (
	slashDate   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	spelledDate = regexp.MustCompile(`^([A-Za-z]+)[\s\p{Zs}](\d{1,2}),[\s\p{Zs}](\d{4})$`)
	dotDate     = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
)

// FindCandidateDates returns every distinct date-looking substring of text,
// sorted lexicographically.
func FindCandidateDates(text string) []string {
	seen := make(map[string]bool)
	for _, pat := range datePatterns {
		for _, m := range pat.FindAllString(text, -1) {
			seen[m] = true
		}
	}

	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// FindTime returns the first 24-hour HH:MM in text, or 00:00 when there is none.
// Values are not range-checked here; ParseStart rejects impossible times.
func FindTime(text string) (hour, minute int) {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute
}

// ParseStart combines a candidate date string with a time of day in loc.
// It reports false for strings that match no known notation and for
// impossible values such as 31/02 or 25:00.
func ParseStart(candidate string, hour, minute int, loc *time.Location) (time.Time, bool) {
	var year, month, day int

	if m := slashDate.FindStringSubmatch(candidate); m != nil {
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else if m := spelledDate.FindStringSubmatch(candidate); m != nil {
		mon, err := time.Parse("January", m[1])
		if err != nil {
			return time.Time{}, false
		}
		month, day, year = int(mon.Month()), atoi(m[2]), atoi(m[3])
	} else if m := dotDate.FindStringSubmatch(candidate); m != nil {
		day, month, year = atoi(m[1]), atoi(m[2]), atoi(m[3])
	} else {
		return time.Time{}, false
	}

	return localTime(year, month, day, hour, minute, loc)
}

// localTime builds a wall-clock time in loc, rejecting values time.Date would
// silently normalize.
func localTime(year, month, day, hour, minute int, loc *time.Location) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	if d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC); d.Day() != day {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
