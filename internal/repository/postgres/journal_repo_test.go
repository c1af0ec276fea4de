package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"poll-registry/internal/domain/poll"
	"poll-registry/internal/retry"
)

func TestJournalRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewJournalRepo(db)
	at := time.Unix(1000, 0).UTC()
	e := poll.Event{
		Seq:      3,
		Type:     poll.EventPollCreated,
		PollID:   1,
		Actor:    "alice",
		At:       at,
		Question: "Q?",
		Options:  []string{"A", "B"},
	}

	mock.ExpectExec("INSERT INTO poll_events").
		WithArgs(int64(3), "PollCreated", int64(1), "alice", at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Append(context.Background(), e); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJournalRepo_AppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO poll_events").WillReturnError(boom)

	err = NewJournalRepo(db).Append(context.Background(), poll.Event{Type: poll.EventVoteCast})
	if !errors.Is(err, boom) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if retry.IsPermanent(err) {
		t.Fatalf("connection errors should be retried")
	}
}

func TestJournalRepo_AppendConstraintViolationIsPermanent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	violation := &pgconn.PgError{Code: "23502", Message: "null value in column \"actor\""}
	mock.ExpectExec("INSERT INTO poll_events").WillReturnError(violation)

	err = NewJournalRepo(db).Append(context.Background(), poll.Event{Seq: 4, Type: poll.EventVoteCast})
	if !retry.IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23502" {
		t.Fatalf("expected wrapped pg error, got %v", err)
	}
}

func TestJournalRepo_Events(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	at := time.Unix(1000, 0).UTC()
	first, _ := json.Marshal(poll.Event{Seq: 0, Type: poll.EventPollCreated, Actor: "alice", At: at, Question: "Q?", Options: []string{"A", "B"}})
	second, _ := json.Marshal(poll.Event{Seq: 1, Type: poll.EventVoteCast, Actor: "bob", At: at, Choice: 1})

	rows := sqlmock.NewRows([]string{"payload"}).AddRow(first).AddRow(second)
	mock.ExpectQuery("SELECT payload FROM poll_events ORDER BY seq").WillReturnRows(rows)

	events, err := NewJournalRepo(db).Events(context.Background())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Type != poll.EventVoteCast || events[1].Choice != 1 || events[1].Actor != "bob" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if !events[0].At.Equal(at) || len(events[0].Options) != 2 {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
}

func TestJournalRepo_EventsBadPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"payload"}).AddRow([]byte("{not json"))
	mock.ExpectQuery("SELECT payload FROM poll_events").WillReturnRows(rows)

	if _, err := NewJournalRepo(db).Events(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestJournalRepo_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectPing()
	if err := NewJournalRepo(db).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}
