// Package storage writes the calendar file and keeps a JSON snapshot of the
// fixtures published by the last run.
//
// The snapshot lives in snapshot.json inside the data directory. It lets a run
// report fixtures that appeared since the previous run and fixtures that
// disappeared before being played.
package storage
