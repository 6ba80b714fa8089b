package storage

import (
	"github.com/go-andiamo/mvctest/mvc"
	"maps"
	"slices"
	"sync"
)

// MockedTempData is an in-memory temp data (and its own factory)
//
// unlike request temp data, values are not removed when read
type MockedTempData interface {
	mvc.TempData
	mvc.TempDataFactory
	// Entries returns a copy of all the temp data entries
	Entries() map[string]any
}

func NewMockedTempData() MockedTempData {
	return &mockedTempData{values: make(map[string]any)}
}

type mockedTempData struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ MockedTempData = (*mockedTempData)(nil)

func (t *mockedTempData) GetTempData(*mvc.HttpContext) mvc.TempData {
	return t
}

func (t *mockedTempData) Get(key string) (any, bool) {
	return t.Peek(key)
}

func (t *mockedTempData) Peek(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

func (t *mockedTempData) Set(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
}

func (t *mockedTempData) Keep(...string) {}

func (t *mockedTempData) Remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
}

func (t *mockedTempData) ContainsKey(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.values[key]
	return ok
}

func (t *mockedTempData) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.values))
}

func (t *mockedTempData) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

func (t *mockedTempData) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.values)
}

func (t *mockedTempData) Entries() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.values)
}
