package repository

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used in tests and as a fallback when
// no shared database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	data   []byte
	closed bool

	// FailWrites makes Save return ErrClosed, for failure-path tests.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save overwrites the stored record.
func (s *MemoryStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.FailWrites {
		return ErrClosed
	}
	s.data = append([]byte(nil), data...)
	return nil
}

// Load returns the stored record, or nil when absent.
func (s *MemoryStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if s.data == nil {
		return nil, nil
	}
	return append([]byte(nil), s.data...), nil
}

// Close marks the store closed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
