// internal/db/schema.go
package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Timestamps are stored as Unix milliseconds (UTC).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS readings (
  id        INTEGER PRIMARY KEY AUTOINCREMENT,
  value1    REAL,
  value2    REAL,
  timestamp INTEGER NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_readings_time ON readings(timestamp);`,
	`CREATE TABLE IF NOT EXISTS connection_statuses (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  is_connect    INTEGER NOT NULL DEFAULT 0,
  is_disconnect INTEGER NOT NULL DEFAULT 0,
  info          TEXT,
  reason_code   INTEGER NOT NULL DEFAULT 0,
  created_at    INTEGER NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS idx_connection_statuses_time ON connection_statuses(created_at);`,
}

// EnsureSchema creates the harvester tables if they are missing.
// Schema evolution is handled outside this process.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema (stmt %d): %w", i, err)
		}
	}
	return nil
}
