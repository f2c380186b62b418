// Package jobs records caption and generation runs in a SQLite database so
// the CLI and HTTP API can report on work that already finished.
//
// The store is safe for concurrent use. Writes retry briefly when SQLite
// reports the database as busy.
package jobs
