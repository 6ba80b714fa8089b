package mvc

import (
	"context"
	"encoding/binary"
	"time"
)

// Session is the session state of a request
type Session interface {
	Id() string
	IsAvailable() bool
	Keys() []string
	TryGetValue(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
	Clear()
	Load(ctx context.Context) error
	Commit(ctx context.Context) error
}

// SetString stores a string session entry
func SetString(s Session, key string, value string) {
	s.Set(key, []byte(value))
}

// GetString gets a string session entry
func GetString(s Session, key string) (string, bool) {
	if data, ok := s.TryGetValue(key); ok {
		return string(data), true
	}
	return "", false
}

// SetInt32 stores an int32 session entry (big-endian encoded)
func SetInt32(s Session, key string, value int32) {
	s.Set(key, EncodeInt32(value))
}

// GetInt32 gets an int32 session entry
func GetInt32(s Session, key string) (int32, bool) {
	if data, ok := s.TryGetValue(key); ok && len(data) == 4 {
		return int32(binary.BigEndian.Uint32(data)), true
	}
	return 0, false
}

// EncodeInt32 encodes an int32 as stored in sessions
func EncodeInt32(value int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(value))
}

// CacheItemPriority is the eviction priority of a cache entry
type CacheItemPriority int

const (
	PriorityNormal CacheItemPriority = iota
	PriorityLow
	PriorityHigh
	PriorityNeverRemove
)

// CacheEntryOptions are the options of a cache entry
type CacheEntryOptions struct {
	AbsoluteExpiration              *time.Time
	AbsoluteExpirationRelativeToNow time.Duration
	SlidingExpiration               time.Duration
	Priority                        CacheItemPriority
	Size                            int64
}

// DistributedCache is a cache of byte values shared across instances
type DistributedCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, options CacheEntryOptions) error
	Refresh(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
}

// MemoryCache is an in-process cache of values
type MemoryCache interface {
	TryGetValue(key any) (any, bool)
	Set(key any, value any, options CacheEntryOptions)
	Remove(key any)
}

// TempData is data retained until it is read
type TempData interface {
	Get(key string) (any, bool)
	Peek(key string) (any, bool)
	Set(key string, value any)
	Keep(keys ...string)
	Remove(key string)
	ContainsKey(key string) bool
	Keys() []string
	Len() int
	Clear()
}

// TempDataFactory provides the temp data for a http context
type TempDataFactory interface {
	GetTempData(hc *HttpContext) TempData
}
