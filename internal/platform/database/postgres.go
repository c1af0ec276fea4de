package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"poll-registry/internal/retry"
)

// NewPostgres opens a pgx-backed pool and waits for the server to accept
// connections, backing off between pings.
func NewPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := waitForPing(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func waitForPing(ctx context.Context, db pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return retry.DoWithRetry(ctx, 6, 500*time.Millisecond, func() error {
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		defer pingCancel()
		return db.PingContext(pingCtx)
	})
}
