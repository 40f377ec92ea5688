package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Open opens (or creates) the SQLite database file at path and verifies the
// connection. The returned handle uses the mattn/go-sqlite3 driver, which the
// Session's transaction probe relies on.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database (10s timeout): %w", err)
	}

	return db, nil
}
