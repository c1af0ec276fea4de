package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/retry"
)

// JournalRepo stores registry events in poll_events, one row per sequence
// number. The full event is kept as JSON so replay sees exactly what was emitted.
type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append is idempotent per sequence number, so a retried write is harmless.
func (r *JournalRepo) Append(ctx context.Context, e poll.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode event %d: %w", e.Seq, err))
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO poll_events (seq, type, poll_id, actor, occurred_at, payload)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (seq) DO NOTHING
    `, int64(e.Seq), string(e.Type), int64(e.PollID), string(e.Actor), e.At, payload)
	if isConstraintViolation(err) {
		return retry.Permanent(fmt.Errorf("append event %d: %w", e.Seq, err))
	}
	return err
}

func (r *JournalRepo) Events(ctx context.Context) ([]poll.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT payload FROM poll_events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []poll.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e poll.Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *JournalRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
