package upload

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps committed objects in process memory. Suitable for tests
// and single-node development; committed URLs use the mem scheme.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStore constructs an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) NewSession(_ context.Context, path string, size int64, _ string) (Session, error) {
	return &memorySession{store: s, path: path, buf: make([]byte, size)}, nil
}

// Object returns a committed object's bytes.
func (s *MemoryStore) Object(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[path]
	return b, ok
}

// Len returns the number of committed objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

type memorySession struct {
	store *MemoryStore
	path  string
	buf   []byte
}

func (m *memorySession) Put(_ context.Context, offset int64, chunk []byte) error {
	if offset+int64(len(chunk)) > int64(len(m.buf)) {
		return fmt.Errorf("chunk at offset %d overruns declared size %d", offset, len(m.buf))
	}
	copy(m.buf[offset:], chunk)
	return nil
}

func (m *memorySession) Commit(_ context.Context) (string, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.objects[m.path] = m.buf
	return "mem://" + m.path, nil
}
