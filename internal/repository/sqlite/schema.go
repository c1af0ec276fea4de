package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the sqlite tables. Timestamps are stored as unix
// nanoseconds so they round-trip without driver-specific parsing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS poll_events (
    seq         INTEGER PRIMARY KEY,
    type        TEXT NOT NULL,
    poll_id     INTEGER NOT NULL,
    actor       TEXT NOT NULL,
    occurred_at INTEGER NOT NULL,
    payload     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_events_poll_id ON poll_events(poll_id);
`
