package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"instadoc/internal/identity"
	"instadoc/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres stores credential records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE identities (
//	    id            UUID PRIMARY KEY,
//	    email         TEXT NOT NULL,
//	    password_hash TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL,
//	    UNIQUE (lower(email))
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed user store. Pool lifecycle is
// managed by the caller.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the identities table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS identities (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate identities: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`CREATE UNIQUE INDEX IF NOT EXISTS identities_email_idx ON identities (lower(email))`)
	if err != nil {
		return fmt.Errorf("migrate identities index: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, user identity.UserRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("user %s: %w", user.Email, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (identity.UserRecord, error) {
	var user identity.UserRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM identities WHERE lower(email) = lower($1)`,
		email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.UserRecord{}, fmt.Errorf("user %s: %w", email, sentinel.ErrNotFound)
	}
	if err != nil {
		return identity.UserRecord{}, fmt.Errorf("find identity: %w", err)
	}
	return user, nil
}
