//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"instadoc/internal/audit"
	"instadoc/internal/audit/store"
	"instadoc/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()

	pc := containers.NewPostgresContainer(s.T())

	st, err := store.OpenPostgres(s.ctx, pc.DSN)
	s.Require().NoError(err)
	s.store = st
	s.T().Cleanup(func() { _ = st.Close() })

	s.Require().NoError(st.Migrate(s.ctx))
}

func (s *PostgresStoreSuite) event(sessionID, action string, at time.Time) audit.Event {
	return audit.Event{
		ID:        uuid.NewString(),
		Timestamp: at,
		SessionID: sessionID,
		Email:     "ada@example.com",
		Action:    action,
		Outcome:   audit.OutcomeOK,
		IP:        "203.0.113.9",
		Device:    "Chrome on Mac OS X",
		RequestID: "req-1",
	}
}

func (s *PostgresStoreSuite) TestAppendAndListBySession() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	first := s.event("sess-list", audit.ActionCodeRequested, base)
	second := s.event("sess-list", audit.ActionCodeVerified, base.Add(time.Second))

	s.Require().NoError(s.store.Append(s.ctx, first))
	s.Require().NoError(s.store.Append(s.ctx, second))
	s.Require().NoError(s.store.Append(s.ctx, s.event("sess-other", audit.ActionCodeRequested, base)))

	events, err := s.store.ListBySession(s.ctx, "sess-list")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionCodeRequested, events[0].Action)
	s.Equal(audit.ActionCodeVerified, events[1].Action)
	s.Equal("Chrome on Mac OS X", events[0].Device)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotent() {
	event := s.event("sess-idem", audit.ActionRegistrationCompleted, time.Now().UTC())

	s.Require().NoError(s.store.Append(s.ctx, event))
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListBySession(s.ctx, "sess-idem")
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestListRecent() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.store.Append(s.ctx,
			s.event("sess-recent", audit.ActionUploadCompleted, base.Add(time.Duration(i)*time.Second))))
	}

	events, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(events, 2)
}
