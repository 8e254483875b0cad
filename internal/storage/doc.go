// Package storage persists the seen-set between runs.
//
// Drivers:
//   - "file": newline-separated identifiers, rewritten atomically
//   - "sqlite": SQLite database file (modernc.org/sqlite, no cgo)
//   - "mongo": a single MongoDB document holding the ordered list
package storage
