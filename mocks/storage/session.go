package storage

import (
	"context"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/google/uuid"
	"maps"
	"slices"
	"sync"
)

// MockedSession is an in-memory session
type MockedSession interface {
	mvc.Session
	// Entries returns a copy of all the session entries
	Entries() map[string][]byte
	// SetId sets the session id
	SetId(id string)
	// Loaded returns the number of times Load was called
	Loaded() int
	// Committed returns the number of times Commit was called
	Committed() int
}

// NewMockedSession creates a new in-memory session with a random id
func NewMockedSession() MockedSession {
	return &mockedSession{
		id:      newId(),
		entries: make(map[string][]byte),
	}
}

type mockedSession struct {
	mu        sync.RWMutex
	id        string
	entries   map[string][]byte
	loaded    int
	committed int
}

var _ MockedSession = (*mockedSession)(nil)

func (s *mockedSession) Id() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *mockedSession) SetId(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}

func (s *mockedSession) IsAvailable() bool {
	return true
}

func (s *mockedSession) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.entries))
}

func (s *mockedSession) TryGetValue(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return slices.Clone(v), ok
}

func (s *mockedSession) Set(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = slices.Clone(value)
}

func (s *mockedSession) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *mockedSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}

func (s *mockedSession) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded++
	return ctx.Err()
}

func (s *mockedSession) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed++
	return ctx.Err()
}

func (s *mockedSession) Entries() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string][]byte, len(s.entries))
	for k, v := range s.entries {
		result[k] = slices.Clone(v)
	}
	return result
}

func (s *mockedSession) Loaded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *mockedSession) Committed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

func newId() string {
	return uuid.NewString()
}
