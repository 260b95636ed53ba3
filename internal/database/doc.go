// Package database keeps a history of saved extraction results in SQLite.
//
// Every result written by the storage package can be recorded in a
// ResultDB together with its file location and per-category counts. The
// full result is kept as JSON so it can be re-rendered in any output
// format later.
//
// The database is a single file (linkaudit.db) in the XDG data directory,
// opened through the CGO-free modernc.org/sqlite driver with WAL enabled.
package database
