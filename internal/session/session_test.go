package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"instadoc/internal/session"
	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/testutil"
)

type SessionSuite struct {
	suite.Suite
	now     time.Time
	manager *session.Manager
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s.manager = session.NewManager([]byte("test-signing-key"),
		session.WithClock(func() time.Time { return s.now }),
	)
}

func (s *SessionSuite) TestIssueAndParse() {
	token, err := s.manager.Issue("id-1", "Ada")
	s.Require().NoError(err)

	claims, err := s.manager.Parse(token)
	s.Require().NoError(err)
	s.Equal("id-1", claims.Subject)
	s.Equal("Ada", claims.Name)
	s.Equal(s.now.Add(session.DefaultTTL), claims.ExpiresAt.Time)
}

func (s *SessionSuite) TestParseExpiredToken() {
	testutil.Given(s.T(), "a token issued seven days ago")
	token, err := s.manager.Issue("id-1", "Ada")
	s.Require().NoError(err)

	testutil.When(s.T(), "it is parsed after the TTL has elapsed")
	s.now = s.now.Add(session.DefaultTTL + time.Minute)
	_, err = s.manager.Parse(token)

	testutil.Then(s.T(), "the session is rejected")
	s.True(derrors.HasCode(err, derrors.CodeUnauthorized))
}

func (s *SessionSuite) TestParseTamperedToken() {
	other := session.NewManager([]byte("different-key"),
		session.WithClock(func() time.Time { return s.now }),
	)
	token, err := other.Issue("id-1", "Ada")
	s.Require().NoError(err)

	_, err = s.manager.Parse(token)
	s.True(derrors.HasCode(err, derrors.CodeUnauthorized))
}

func (s *SessionSuite) TestSetCookies() {
	token, err := s.manager.Issue("id-1", "Ada")
	s.Require().NoError(err)

	rec := httptest.NewRecorder()
	s.manager.SetCookies(rec, token, "id-1", "Ada")

	cookies := rec.Result().Cookies()
	byName := make(map[string]*http.Cookie, len(cookies))
	for _, c := range cookies {
		byName[c.Name] = c
	}

	s.Require().Contains(byName, session.TokenCookie)
	s.Require().Contains(byName, session.UserIDCookie)
	s.Require().Contains(byName, session.UserNameCookie)

	s.True(byName[session.TokenCookie].HttpOnly)
	s.False(byName[session.UserIDCookie].HttpOnly)
	s.Equal("id-1", byName[session.UserIDCookie].Value)
	s.Equal("Ada", byName[session.UserNameCookie].Value)
	s.Equal(int(session.DefaultTTL/time.Second), byName[session.UserIDCookie].MaxAge)
}
