// Package verification implements the challenge gate that proves control of
// an email address before registration proceeds. The gate itself is pure: it
// returns the issued Challenge to the caller and verifies a candidate against
// a Challenge the caller supplies. Persistence of the one outstanding
// challenge per session belongs to the caller (see the store subpackage).
package verification

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"instadoc/internal/verification/metrics"
	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/email"
)

// Code space: 5-digit, zero-less decimal strings.
const (
	codeMin  = 10000
	codeSpan = 90000
)

// Failure identities; each is wrapped with a domain error code when returned
// so callers can branch with errors.Is or render with the code.
var (
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrDispatchFailed = errors.New("verification code dispatch failed")
	ErrNoChallenge    = errors.New("no verification challenge outstanding")
	ErrMismatch       = errors.New("verification code mismatch")
)

// Dispatcher delivers the code to the user's mailbox.
type Dispatcher interface {
	Dispatch(ctx context.Context, email, code string) error
}

// Gate issues and checks verification challenges.
type Gate struct {
	dispatch Dispatcher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	intn     func(n int) int
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithClock overrides the issue timestamp source. For tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithCodeSource overrides the random draw. For tests.
func WithCodeSource(intn func(n int) int) Option {
	return func(g *Gate) { g.intn = intn }
}

func NewGate(dispatch Dispatcher, opts ...Option) *Gate {
	g := &Gate{
		dispatch: dispatch,
		logger:   slog.Default(),
		now:      time.Now,
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequestCode validates the address, draws a fresh code, dispatches it, and
// returns the challenge. The newest challenge supersedes any previous one for
// the same session; enforcing that is the caller's store, not the gate.
func (g *Gate) RequestCode(ctx context.Context, addr string) (Challenge, error) {
	if !email.ValidAddress(addr) {
		return Challenge{}, derrors.Wrap(ErrInvalidEmail, derrors.CodeValidation, "invalid email address")
	}

	code := strconv.Itoa(codeMin + g.intn(codeSpan))

	if err := g.dispatch.Dispatch(ctx, addr, code); err != nil {
		if g.metrics != nil {
			g.metrics.DispatchFailures.Inc()
		}
		g.logger.ErrorContext(ctx, "verification code dispatch failed",
			"email", addr,
			"error", err,
		)
		return Challenge{}, derrors.Wrap(errors.Join(ErrDispatchFailed, err), derrors.CodeUnavailable,
			"failed to send verification code, please try again")
	}

	if g.metrics != nil {
		g.metrics.CodesIssued.Inc()
	}
	g.logger.InfoContext(ctx, "verification code dispatched", "email", addr)

	return Challenge{Email: addr, Code: code, IssuedAt: g.now()}, nil
}

// VerifyCode compares the candidate against the outstanding challenge using
// exact string equality. A match consumes the challenge (the caller must drop
// it); a mismatch leaves it intact so the user can retry.
func (g *Gate) VerifyCode(challenge Challenge, candidate string) error {
	if challenge.Zero() {
		return derrors.Wrap(ErrNoChallenge, derrors.CodeUnauthorized, "request a verification code first")
	}
	if candidate != challenge.Code {
		if g.metrics != nil {
			g.metrics.Mismatches.Inc()
		}
		return derrors.Wrap(ErrMismatch, derrors.CodeUnauthorized, "incorrect verification code")
	}
	if g.metrics != nil {
		g.metrics.Verified.Inc()
	}
	return nil
}
