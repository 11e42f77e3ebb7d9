package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"instadoc/internal/identity"
	"instadoc/pkg/platform/sentinel"
)

// Error Contract:
// - Create returns ErrConflict when the email is already registered
// - FindByEmail returns ErrNotFound when no record exists
// - Email matching is case-insensitive, the stored record keeps the original

// Memory stores credential records in process memory for tests/dev.
type Memory struct {
	mu    sync.RWMutex
	users map[string]identity.UserRecord // keyed by lowercased email
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]identity.UserRecord)}
}

func (s *Memory) Create(_ context.Context, user identity.UserRecord) error {
	key := strings.ToLower(user.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[key]; exists {
		return fmt.Errorf("user %s: %w", user.Email, sentinel.ErrConflict)
	}
	s.users[key] = user
	return nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (identity.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[strings.ToLower(email)]; ok {
		return user, nil
	}
	return identity.UserRecord{}, fmt.Errorf("user %s: %w", email, sentinel.ErrNotFound)
}

// Len returns the number of stored records. For tests.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
