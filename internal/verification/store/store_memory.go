package store

import (
	"context"
	"fmt"
	"sync"

	"instadoc/internal/verification"
	"instadoc/pkg/platform/sentinel"
)

// Error Contract:
// - Get returns ErrNotFound (wrapped) when no challenge is outstanding
// - Put always overwrites; there is at most one challenge per session
// - Delete of an absent challenge is a no-op

// Memory keeps challenges in process memory. Suitable for tests and
// single-node development.
type Memory struct {
	mu         sync.RWMutex
	challenges map[string]verification.Challenge
}

// NewMemory constructs an empty in-memory challenge store.
func NewMemory() *Memory {
	return &Memory{challenges: make(map[string]verification.Challenge)}
}

func (s *Memory) Put(_ context.Context, sessionID string, ch verification.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[sessionID] = ch
	return nil
}

func (s *Memory) Get(_ context.Context, sessionID string) (verification.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ch, ok := s.challenges[sessionID]; ok {
		return ch, nil
	}
	return verification.Challenge{}, fmt.Errorf("challenge for session %s: %w", sessionID, sentinel.ErrNotFound)
}

func (s *Memory) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, sessionID)
	return nil
}
