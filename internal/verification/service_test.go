package verification

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	derrors "instadoc/pkg/domain-errors"
)

type recordingDispatcher struct {
	calls []struct{ email, code string }
	err   error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, email, code string) error {
	d.calls = append(d.calls, struct{ email, code string }{email, code})
	return d.err
}

type GateSuite struct {
	suite.Suite
	dispatcher *recordingDispatcher
	gate       *Gate
}

func (s *GateSuite) SetupTest() {
	s.dispatcher = &recordingDispatcher{}
	s.gate = NewGate(s.dispatcher)
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) TestRequestCode() {
	ctx := context.Background()

	s.Run("rejects syntactically invalid email without dispatching", func() {
		for _, addr := range []string{"", "no-at", "@x.com", "a@nodot"} {
			_, err := s.gate.RequestCode(ctx, addr)
			s.Require().ErrorIs(err, ErrInvalidEmail)
			s.True(derrors.HasCode(err, derrors.CodeValidation))
		}
		s.Empty(s.dispatcher.calls)
	})

	s.Run("issues a five digit code and dispatches it", func() {
		ch, err := s.gate.RequestCode(ctx, "doc@example.com")
		s.Require().NoError(err)
		s.Len(ch.Code, 5)
		n, convErr := strconv.Atoi(ch.Code)
		s.Require().NoError(convErr)
		s.GreaterOrEqual(n, 10000)
		s.LessOrEqual(n, 99999)
		s.Equal("doc@example.com", ch.Email)
		s.False(ch.IssuedAt.IsZero())

		s.Require().Len(s.dispatcher.calls, 1)
		s.Equal("doc@example.com", s.dispatcher.calls[0].email)
		s.Equal(ch.Code, s.dispatcher.calls[0].code)
	})

	s.Run("code draw covers the edges of the range", func() {
		gate := NewGate(s.dispatcher, WithCodeSource(func(int) int { return 0 }))
		ch, err := gate.RequestCode(ctx, "doc@example.com")
		s.Require().NoError(err)
		s.Equal("10000", ch.Code)

		gate = NewGate(s.dispatcher, WithCodeSource(func(n int) int { return n - 1 }))
		ch, err = gate.RequestCode(ctx, "doc@example.com")
		s.Require().NoError(err)
		s.Equal("99999", ch.Code)
	})

	s.Run("dispatch failure surfaces as upstream unavailable", func() {
		s.dispatcher.err = errors.New("mail service answered 503")
		_, err := s.gate.RequestCode(ctx, "doc@example.com")
		s.Require().ErrorIs(err, ErrDispatchFailed)
		s.True(derrors.HasCode(err, derrors.CodeUnavailable))
	})

	s.Run("clock override stamps the challenge", func() {
		fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		gate := NewGate(&recordingDispatcher{}, WithClock(func() time.Time { return fixed }))
		ch, err := gate.RequestCode(ctx, "doc@example.com")
		s.Require().NoError(err)
		s.Equal(fixed, ch.IssuedAt)
	})
}

func (s *GateSuite) TestVerifyCode() {
	ctx := context.Background()

	s.Run("no challenge outstanding", func() {
		err := s.gate.VerifyCode(Challenge{}, "12345")
		s.Require().ErrorIs(err, ErrNoChallenge)
		s.True(derrors.HasCode(err, derrors.CodeUnauthorized))
	})

	s.Run("mismatch leaves the challenge usable for a later match", func() {
		ch, err := s.gate.RequestCode(ctx, "doc@example.com")
		s.Require().NoError(err)

		err = s.gate.VerifyCode(ch, "00000")
		s.Require().ErrorIs(err, ErrMismatch)

		// The same challenge value still verifies: nothing was consumed.
		s.Require().NoError(s.gate.VerifyCode(ch, ch.Code))
	})

	s.Run("exact string equality is required", func() {
		ch := Challenge{Email: "doc@example.com", Code: "12345", IssuedAt: time.Now()}
		s.Require().ErrorIs(s.gate.VerifyCode(ch, " 12345"), ErrMismatch)
		s.Require().ErrorIs(s.gate.VerifyCode(ch, "12345 "), ErrMismatch)
		s.Require().NoError(s.gate.VerifyCode(ch, "12345"))
	})
}
