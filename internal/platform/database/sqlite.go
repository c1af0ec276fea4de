package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSQLite opens a sqlite database through sqlx. SQLite allows one writer,
// so the pool is capped at a single connection; this also keeps ":memory:"
// databases shared across queries.
func NewSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := waitForPing(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
