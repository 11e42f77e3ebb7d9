// Package identity provisions authentication identities for registrations.
// The Provider interface is the collaborator contract the saga consumes; the
// local provider in this package implements it over a user store with bcrypt
// credential hashing.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	derrors "instadoc/pkg/domain-errors"
	"instadoc/pkg/platform/sentinel"
)

// MinPasswordLength is the provider's credential policy floor.
const MinPasswordLength = 6

// Failure identities surfaced to the saga. Both are terminal for a
// registration attempt.
var (
	ErrEmailInUse     = errors.New("email already registered")
	ErrWeakCredential = errors.New("password does not meet the credential policy")
)

// Provider creates authentication identities.
type Provider interface {
	CreateIdentity(ctx context.Context, email, password string) (Identity, error)
}

// UserStore persists credential records. Create returns ErrConflict (wrapped)
// when the email is already registered.
type UserStore interface {
	Create(ctx context.Context, user UserRecord) error
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
}

// LocalProvider implements Provider over a UserStore.
type LocalProvider struct {
	users  UserStore
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*LocalProvider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *LocalProvider) { p.logger = logger }
}

// WithClock overrides record timestamps. For tests.
func WithClock(now func() time.Time) Option {
	return func(p *LocalProvider) { p.now = now }
}

func NewLocalProvider(users UserStore, opts ...Option) *LocalProvider {
	p := &LocalProvider{
		users:  users,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateIdentity hashes the credential and stores a fresh identity record.
// There is deliberately no dedup beyond the store's uniqueness constraint: a
// retried registration after a partial failure creates a second identity
// unless the same email collides here.
func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string) (Identity, error) {
	if len(password) < MinPasswordLength {
		return Identity{}, derrors.Wrap(ErrWeakCredential, derrors.CodeValidation,
			"password is too weak, please use a stronger password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, derrors.Wrap(err, derrors.CodeInternal, "could not process credentials")
	}

	user := UserRecord{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now(),
	}

	if err := p.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Identity{}, derrors.Wrap(errors.Join(ErrEmailInUse, err), derrors.CodeConflict,
				"email already registered, please use a different email")
		}
		return Identity{}, derrors.Wrap(err, derrors.CodeInternal, "identity creation failed")
	}

	p.logger.InfoContext(ctx, "identity provisioned", "identity_id", user.ID, "email", email)
	return Identity{ID: user.ID, Email: email}, nil
}

// VerifyPassword checks a candidate password against a stored record. Used by
// the follow-on login flow, not by registration.
func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (Identity, error) {
	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Identity{}, derrors.New(derrors.CodeUnauthorized, "invalid email or password")
		}
		return Identity{}, derrors.Wrap(err, derrors.CodeInternal, "credential lookup failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Identity{}, derrors.New(derrors.CodeUnauthorized, "invalid email or password")
		}
		return Identity{}, fmt.Errorf("compare credentials: %w", err)
	}

	return Identity{ID: user.ID, Email: user.Email}, nil
}
