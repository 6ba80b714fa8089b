package storage

import (
	"context"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"maps"
	"slices"
	"sync"
)

// CacheEntry is a cache entry with its options
type CacheEntry[T any] struct {
	Value   T
	Options mvc.CacheEntryOptions
}

// MockedDistributedCache is an in-memory distributed cache
type MockedDistributedCache interface {
	mvc.DistributedCache
	// Entries returns a copy of all the cache entries
	Entries() map[string]CacheEntry[[]byte]
	// Entry gets a cache entry
	Entry(key string) (CacheEntry[[]byte], bool)
	Count() int
	Clear()
}

// NewMockedDistributedCache creates a new in-memory distributed cache
func NewMockedDistributedCache() MockedDistributedCache {
	return &mockedDistributedCache{entries: make(map[string]CacheEntry[[]byte])}
}

type mockedDistributedCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry[[]byte]
}

var _ MockedDistributedCache = (*mockedDistributedCache)(nil)

func (c *mockedDistributedCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return slices.Clone(e.Value), nil
	}
	return nil, nil
}

func (c *mockedDistributedCache) Set(ctx context.Context, key string, value []byte, options mvc.CacheEntryOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("cache value for key %q cannot be nil", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry[[]byte]{Value: slices.Clone(value), Options: options}
	return nil
}

func (c *mockedDistributedCache) Refresh(ctx context.Context, key string) error {
	return ctx.Err()
}

func (c *mockedDistributedCache) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mockedDistributedCache) Entries() map[string]CacheEntry[[]byte] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

func (c *mockedDistributedCache) Entry(key string) (CacheEntry[[]byte], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *mockedDistributedCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *mockedDistributedCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// MockedMemoryCache is an in-memory cache of values
type MockedMemoryCache interface {
	mvc.MemoryCache
	// Entries returns a copy of all the cache entries
	Entries() map[any]CacheEntry[any]
	// Entry gets a cache entry
	Entry(key any) (CacheEntry[any], bool)
	Count() int
	Clear()
}

// NewMockedMemoryCache creates a new in-memory cache
func NewMockedMemoryCache() MockedMemoryCache {
	return &mockedMemoryCache{entries: make(map[any]CacheEntry[any])}
}

type mockedMemoryCache struct {
	mu      sync.RWMutex
	entries map[any]CacheEntry[any]
}

var _ MockedMemoryCache = (*mockedMemoryCache)(nil)

func (c *mockedMemoryCache) TryGetValue(key any) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.Value, ok
}

func (c *mockedMemoryCache) Set(key any, value any, options mvc.CacheEntryOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry[any]{Value: value, Options: options}
}

func (c *mockedMemoryCache) Remove(key any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *mockedMemoryCache) Entries() map[any]CacheEntry[any] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}

func (c *mockedMemoryCache) Entry(key any) (CacheEntry[any], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *mockedMemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *mockedMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
