// Package database provides SQLite-backed storage for scrape run
// history. Every completed run can be persisted with its full report,
// so earlier results remain queryable by target: list past runs, show
// the latest result, or fetch a specific run by ID.
//
// The store uses modernc.org/sqlite, a pure-Go SQLite driver, so the
// binary needs no cgo and cross-compiles cleanly.
package database
