package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/retry"
)

type eventRow struct {
	Seq        int64  `db:"seq"`
	Type       string `db:"type"`
	PollID     int64  `db:"poll_id"`
	Actor      string `db:"actor"`
	OccurredAt int64  `db:"occurred_at"`
	Payload    string `db:"payload"`
}

// JournalRepo is the single-file journal used for local runs and tests.
type JournalRepo struct {
	db *sqlx.DB
}

func NewJournalRepo(db *sqlx.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Append(ctx context.Context, e poll.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode event %d: %w", e.Seq, err))
	}

	const q = `
        INSERT INTO poll_events (seq, type, poll_id, actor, occurred_at, payload)
        VALUES (:seq, :type, :poll_id, :actor, :occurred_at, :payload)
        ON CONFLICT (seq) DO NOTHING
    `
	_, err = r.db.NamedExecContext(ctx, q, eventRow{
		Seq:        int64(e.Seq),
		Type:       string(e.Type),
		PollID:     int64(e.PollID),
		Actor:      string(e.Actor),
		OccurredAt: e.At.UnixNano(),
		Payload:    string(payload),
	})
	if isConstraintViolation(err) {
		return retry.Permanent(fmt.Errorf("append event %d: %w", e.Seq, err))
	}
	return err
}

func (r *JournalRepo) Events(ctx context.Context) ([]poll.Event, error) {
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM poll_events ORDER BY seq`); err != nil {
		return nil, err
	}

	events := make([]poll.Event, 0, len(rows))
	for _, row := range rows {
		var e poll.Event
		if err := json.Unmarshal([]byte(row.Payload), &e); err != nil {
			return nil, fmt.Errorf("decode event %d: %w", row.Seq, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *JournalRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
