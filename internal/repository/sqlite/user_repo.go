package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"poll-registry/internal/domain/user"
)

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) toUser() *user.User {
	return &user.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    time.Unix(0, r.CreatedAt).UTC(),
	}
}

type UserRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	created := r.now().UTC()
	const q = `
        INSERT INTO users (id, email, password_hash, created_at)
        VALUES (:id, :email, :password_hash, :created_at)
    `
	_, err := r.db.NamedExecContext(ctx, q, userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    created.UnixNano(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailTaken
		}
		return err
	}
	u.CreatedAt = created
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getOne(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toUser(), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// isConstraintViolation matches any extended SQLITE_CONSTRAINT code.
func isConstraintViolation(err error) bool {
	var sqliteErr *driver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
