package mvc

import (
	"slices"
	"sync"
)

// tempData is the default (per request) temp data used when no TempDataFactory is registered
type tempData struct {
	mu     sync.Mutex
	values map[string]any
	retain map[string]bool
}

func newTempData() *tempData {
	return &tempData{values: map[string]any{}, retain: map[string]bool{}}
}

func (t *tempData) Get(key string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	if ok {
		delete(t.retain, key)
	}
	return v, ok
}

func (t *tempData) Peek(key string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	return v, ok
}

func (t *tempData) Set(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
	t.retain[key] = true
}

func (t *tempData) Keep(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(keys) == 0 {
		for k := range t.values {
			t.retain[k] = true
		}
	}
	for _, k := range keys {
		if _, ok := t.values[k]; ok {
			t.retain[k] = true
		}
	}
}

func (t *tempData) Remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
	delete(t.retain, key)
}

func (t *tempData) ContainsKey(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.values[key]
	return ok
}

func (t *tempData) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]string, 0, len(t.values))
	for k := range t.values {
		result = append(result, k)
	}
	slices.Sort(result)
	return result
}

func (t *tempData) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}

func (t *tempData) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.values)
	clear(t.retain)
}
