package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"authflow/internal/domain/user"
	"authflow/internal/infrastructure/database"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint error.
const uniqueViolation = "23505"

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) user.Repository {
	return &userRepository{db: db}
}

// Create inserts one user row. The unique constraints on email and
// username are the authority for duplicates: a concurrent signup with
// the same identifier loses here, not at an earlier existence check.
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, nullable(u.Email), nullable(u.Username), u.Password, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrUserAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	return r.getByColumn(ctx, "id", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getByColumn(ctx, "email", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getByColumn(ctx, "username", username)
}

func (r *userRepository) getByColumn(ctx context.Context, column, value string) (*user.User, error) {
	u := &user.User{}
	var email, username sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, username, password, created_at FROM users WHERE `+column+` = $1`,
		value,
	).Scan(&u.ID, &email, &username, &u.Password, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Email = email.String
	u.Username = username.String
	return u, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
