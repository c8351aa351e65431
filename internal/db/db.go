package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// DefaultMaxConns is the default connection pool size.
const DefaultMaxConns = 8

// Open opens a SQLite database and configures pragmas. The pragmas ride
// on the DSN so every pooled connection gets them, not just the first.
// maxConns bounds the connection pool; callers queue when it is exhausted
// instead of spawning new connections.
func Open(path string, maxConns int) (*sql.DB, error) {
	// Set pragmas for performance and correctness.
	pragmas := []string{
		"journal_mode(WAL)",
		"busy_timeout(5000)",
		"foreign_keys(ON)",
		"synchronous(NORMAL)",
	}

	query := url.Values{}
	for _, p := range pragmas {
		query.Add("_pragma", p)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}
