package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"poll-registry/internal/domain/user"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	query := `
        INSERT INTO users (id, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING created_at
    `
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.PasswordHash).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, `
        SELECT id, email, password_hash, created_at
        FROM users WHERE email = $1
    `, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, `
        SELECT id, email, password_hash, created_at
        FROM users WHERE id = $1
    `, id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*user.User, error) {
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isConstraintViolation matches SQLSTATE class 23, integrity constraint
// violations, which fail the same way on every retry.
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	return false
}
