package fixture

import "time"

// SeasonYear returns the cYear parameter the site uses for the season in
// progress at now. Seasons span two calendar years and are named after the
// second one, with the boundary on July 1.
func SeasonYear(now time.Time) int {
	if now.Month() >= time.July {
		return now.Year() + 1
	}
	return now.Year()
}
