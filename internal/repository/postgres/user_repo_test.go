package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"poll-registry/internal/domain/user"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	created := time.Unix(2000, 0).UTC()
	u := &user.User{ID: "8a4c2f8e-8d7b-4b9e-9a55-3f0c1d2e4b6a", Email: "a@example.com", PasswordHash: "hash"}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.PasswordHash).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	if err := NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("created_at not populated: %v", u.CreatedAt)
	}
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err = NewUserRepo(db).Create(context.Background(), &user.User{ID: "x", Email: "a@example.com"})
	if !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	created := time.Unix(2000, 0).UTC()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
		AddRow("id-1", "a@example.com", "hash", created)
	mock.ExpectQuery("SELECT id, email, password_hash, created_at").
		WithArgs("a@example.com").
		WillReturnRows(rows)

	u, err := NewUserRepo(db).GetByEmail(context.Background(), "a@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.ID != "id-1" || u.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepo_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT id, email, password_hash, created_at").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := NewUserRepo(db).GetByID(context.Background(), "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
