// Package cli implements the command-line interface for maccabi-ics.
//
// The root command builds the calendar: it loads the configuration, runs the
// fetch across competitions, serializes and verifies the calendar, writes it
// and reports a text or JSON summary. When a data directory is set it also
// reports fixtures added or dropped since the previous run.
//
// Subcommands:
//
//	validate <file>  parse an existing .ics file and list its events
//	season           print the season-year parameter for today
//	watch            rebuild the calendar on a cron schedule until interrupted
package cli
