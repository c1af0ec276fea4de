package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the tables used by the postgres stores. Safe to call on
// every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS poll_events (
    seq         BIGINT PRIMARY KEY,
    type        TEXT NOT NULL,
    poll_id     BIGINT NOT NULL,
    actor       TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL,
    payload     JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_events_poll_id ON poll_events(poll_id);
`
