package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"instadoc/internal/audit"
)

// Postgres persists trail events over database/sql with the pq driver.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a pq-backed connection and verifies it.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgres wraps an existing connection. Lifecycle stays with the caller.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

// Migrate creates the audit_events table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id          UUID PRIMARY KEY,
			timestamp   TIMESTAMPTZ NOT NULL,
			session_id  TEXT NOT NULL DEFAULT '',
			identity_id TEXT NOT NULL DEFAULT '',
			email       TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			outcome     TEXT NOT NULL DEFAULT '',
			reason      TEXT NOT NULL DEFAULT '',
			ip          TEXT NOT NULL DEFAULT '',
			device      TEXT NOT NULL DEFAULT '',
			request_id  TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate audit_events: %w", err)
	}
	return nil
}

// Append is idempotent on event ID so a retried worker never duplicates rows.
func (s *Postgres) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, session_id, identity_id, email,
			action, outcome, reason, ip, device, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`,
		event.ID, event.Timestamp, event.SessionID, event.IdentityID, event.Email,
		event.Action, event.Outcome, event.Reason, event.IP, event.Device, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Postgres) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, session_id, identity_id, email,
		       action, outcome, reason, ip, device, request_id
		FROM audit_events
		WHERE session_id = $1
		ORDER BY timestamp
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, session_id, identity_id, email,
		       action, outcome, reason, ip, device, request_id
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.SessionID, &e.IdentityID, &e.Email,
			&e.Action, &e.Outcome, &e.Reason, &e.IP, &e.Device, &e.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
