package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"instadoc/pkg/platform/sentinel"
)

// Error Contract:
// - Put returns ErrConflict when the collection/key already holds a document
// - Get returns ErrNotFound when no document exists

// Memory stores documents as marshaled JSON in process memory.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]json.RawMessage // keyed by collection + "/" + key
}

// NewMemory constructs an empty in-memory document store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]json.RawMessage)}
}

func (s *Memory) Put(_ context.Context, collection, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	id := collection + "/" + key
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[id]; exists {
		return fmt.Errorf("document %s: %w", id, sentinel.ErrConflict)
	}
	s.docs[id] = raw
	return nil
}

// Get unmarshals the stored document into out. For tests.
func (s *Memory) Get(_ context.Context, collection, key string, out any) error {
	id := collection + "/" + key
	s.mu.RLock()
	raw, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("document %s: %w", id, sentinel.ErrNotFound)
	}
	return json.Unmarshal(raw, out)
}

// Len returns the number of stored documents. For tests.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
