package storage

import (
	"errors"
	"time"
)

// ErrNotOpen is returned by a store that holds no open connection.
var ErrNotOpen = errors.New("storage not open")

// Config configures storage.
//
// Driver values:
//   - "file": plain text file, one identifier per line (default)
//   - "sqlite": SQLite database file
//   - "mongo": MongoDB collection
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	URI        string
	Database   string
	Collection string
	Timeout    time.Duration // mongo connect/op timeout; 0 means 10s
}
