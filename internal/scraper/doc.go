// Package scraper fetches the maccabi.co.il season fixture pages and extracts
// upcoming games from them.
//
// The site has no stable markup schema, so extraction is heuristic: every
// date-looking substring of the page's plain text is a candidate, and the
// text within a fixed radius of it in the raw markup (its neighborhood) is
// searched for a kickoff time, competition, opponent and venue. This assumes
// the card/table layouts keep a game's details textually close to its date.
package scraper
