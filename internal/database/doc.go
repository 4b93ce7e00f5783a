// Package database keeps the staffscan history in SQLite.
//
// A Store holds three tables:
//   - runs: one row per pipeline run, with the full run report as JSON
//   - employees: the latest record per company and name key, with first
//     and last sighting
//   - exceptions: operator include and exclude decisions for name validation
//
// The store lives in one directory, staffscan.db next to staffscan.lock.
// The lock file keeps a second process from writing at the same time.
// The driver is modernc.org/sqlite, so no cgo is needed.
package database
