package goalstore

import (
	"context"
	"sync"

	"github.com/okian/glance/internal/domain/model"
)

// MemoryStore is an in-process goal source with manual event injection,
// used by tests as a stand-in for the external goal store.
type MemoryStore struct {
	mu     sync.RWMutex
	goals  []model.Goal
	events chan model.ChangeEvent
	closed bool

	// ReadErr, when set, is returned by ReadAll.
	ReadErr error
}

// NewMemoryStore creates an empty in-memory goal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(chan model.ChangeEvent, eventBuffer),
	}
}

// SetGoals replaces the goal set.
func (s *MemoryStore) SetGoals(goals []model.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append([]model.Goal(nil), goals...)
}

// ReadAll returns the current goal set.
func (s *MemoryStore) ReadAll(_ context.Context) ([]model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	return append([]model.Goal(nil), s.goals...), nil
}

// Emit injects a change event into the subscription stream.
func (s *MemoryStore) Emit(ev model.ChangeEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	s.events <- ev
}

// Events returns the change stream.
func (s *MemoryStore) Events() <-chan model.ChangeEvent {
	return s.events
}

// Close closes the event stream.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
	return nil
}
