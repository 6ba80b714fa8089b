package mvctest

import (
	"bytes"
	"fmt"
	"github.com/go-andiamo/mvctest/mocks/storage"
	"github.com/go-andiamo/mvctest/mvc"
	"reflect"
)

// SessionBuilder seeds the session before the action is called
type SessionBuilder interface {
	WithId(id string) SessionBuilder
	WithEntry(key string, value []byte) SessionBuilder
	WithString(key string, value string) SessionBuilder
	WithInt32(key string, value int32) SessionBuilder
}

type sessionBuilder struct {
	session storage.MockedSession
}

func (b *sessionBuilder) WithId(id string) SessionBuilder {
	b.session.SetId(id)
	return b
}

func (b *sessionBuilder) WithEntry(key string, value []byte) SessionBuilder {
	b.session.Set(key, bytes.Clone(value))
	return b
}

func (b *sessionBuilder) WithString(key string, value string) SessionBuilder {
	mvc.SetString(b.session, key, value)
	return b
}

func (b *sessionBuilder) WithInt32(key string, value int32) SessionBuilder {
	mvc.SetInt32(b.session, key, value)
	return b
}

// DistributedCacheBuilder seeds the distributed cache before the action is called
type DistributedCacheBuilder interface {
	WithEntry(key string, value []byte, options ...mvc.CacheEntryOptions) DistributedCacheBuilder
}

type distributedCacheBuilder struct {
	tc *TestContext
}

func (b *distributedCacheBuilder) WithEntry(key string, value []byte, options ...mvc.CacheEntryOptions) DistributedCacheBuilder {
	opts := mvc.CacheEntryOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	if err := b.tc.DistributedCache().Set(b.tc.helper.Context(), key, bytes.Clone(value), opts); err != nil {
		panic(fmt.Errorf("unable to seed distributed cache entry %q: %w", key, err))
	}
	return b
}

// MemoryCacheBuilder seeds the memory cache before the action is called
type MemoryCacheBuilder interface {
	WithEntry(key any, value any, options ...mvc.CacheEntryOptions) MemoryCacheBuilder
}

type memoryCacheBuilder struct {
	tc *TestContext
}

func (b *memoryCacheBuilder) WithEntry(key any, value any, options ...mvc.CacheEntryOptions) MemoryCacheBuilder {
	opts := mvc.CacheEntryOptions{}
	if len(options) > 0 {
		opts = options[0]
	}
	b.tc.MemoryCache().Set(key, value, opts)
	return b
}

// TempDataBuilder seeds the temp data before the action is called
type TempDataBuilder interface {
	WithEntry(key string, value any) TempDataBuilder
}

type tempDataBuilder struct {
	tc *TestContext
}

func (b *tempDataBuilder) WithEntry(key string, value any) TempDataBuilder {
	b.tc.TempData().Set(key, value)
	return b
}

// entryAssertions are the assertions common to the data providers (session, caches and temp data)
type entryAssertions struct {
	tc       *TestContext
	provider string
}

func (a *entryAssertions) check(name string, ok bool, expected, actual string, ev, av any) {
	a.tc.check(DataProviderAssertion, name, ok, a.provider, expected, actual, ev, av)
}

func (a *entryAssertions) containingKey(name string, key any, found bool) {
	a.check(name, found, fmt.Sprintf("have entry with %s key", formatValue(key)), "such was not found", key, nil)
}

func (a *entryAssertions) containingValue(name string, key any, expected any, actual any, found bool) {
	if !found {
		a.containingKey(name, key, false)
		return
	}
	a.check(name, Equal(expected, actual), fmt.Sprintf("have entry with %s key and the provided value", formatValue(key)),
		fmt.Sprintf("the value was different (expected %s, actual %s)", formatValue(expected), formatValue(actual)), expected, actual)
}

func (a *entryAssertions) containingValueOfType(name string, key any, sample any, actual any, found bool) {
	if !found {
		a.containingKey(name, key, false)
		return
	}
	a.check(name, isOfType(actual, sample), fmt.Sprintf("have entry with %s key and value of type %s", formatValue(key), friendlyTypeName(reflect.TypeOf(sample))),
		"in fact it was of type "+typeName(actual), friendlyTypeName(reflect.TypeOf(sample)), typeName(actual))
}

func (a *entryAssertions) count(name string, expected int, actual int) {
	a.check(name, expected == actual, fmt.Sprintf("have %d entries", expected), fmt.Sprintf("in fact contained %d", actual), expected, actual)
}

func (a *entryAssertions) options(name string, key any, expected mvc.CacheEntryOptions, actual mvc.CacheEntryOptions, found bool) {
	if !found {
		a.containingKey(name, key, false)
		return
	}
	a.check(name, Equal(expected, actual), fmt.Sprintf("have entry with %s key and the provided options", formatValue(key)),
		fmt.Sprintf("the options were different (expected %+v, actual %+v)", expected, actual), expected, actual)
}

type SessionAssertions interface {
	ContainingEntry(key string, value []byte) SessionAssertions
	ContainingEntryWithKey(key string) SessionAssertions
	ContainingStringEntry(key string, value string) SessionAssertions
	WithEntriesCount(count int) SessionAssertions
	WithId(id string) SessionAssertions
}

type sessionAssertions struct {
	entryAssertions
}

func newSessionAssertions(tc *TestContext) SessionAssertions {
	return &sessionAssertions{entryAssertions{tc: tc, provider: "session"}}
}

func (a *sessionAssertions) ContainingEntry(key string, value []byte) SessionAssertions {
	actual, found := a.tc.Session().TryGetValue(key)
	a.containingValue("ContainingEntry", key, value, actual, found)
	return a
}

func (a *sessionAssertions) ContainingEntryWithKey(key string) SessionAssertions {
	_, found := a.tc.Session().TryGetValue(key)
	a.containingKey("ContainingEntryWithKey", key, found)
	return a
}

func (a *sessionAssertions) ContainingStringEntry(key string, value string) SessionAssertions {
	actual, found := mvc.GetString(a.tc.Session(), key)
	a.containingValue("ContainingStringEntry", key, value, actual, found)
	return a
}

func (a *sessionAssertions) WithEntriesCount(count int) SessionAssertions {
	a.count("WithEntriesCount", count, len(a.tc.Session().Keys()))
	return a
}

func (a *sessionAssertions) WithId(id string) SessionAssertions {
	actual := a.tc.Session().Id()
	a.check("WithId", actual == id, fmt.Sprintf("have '%s' id", id), fmt.Sprintf("instead received '%s'", actual), id, actual)
	return a
}

type DistributedCacheAssertions interface {
	ContainingEntry(key string, value []byte) DistributedCacheAssertions
	ContainingEntryWithKey(key string) DistributedCacheAssertions
	ContainingEntryWithOptions(key string, options mvc.CacheEntryOptions) DistributedCacheAssertions
	WithEntriesCount(count int) DistributedCacheAssertions
}

type distributedCacheAssertions struct {
	entryAssertions
}

func newDistributedCacheAssertions(tc *TestContext) DistributedCacheAssertions {
	return &distributedCacheAssertions{entryAssertions{tc: tc, provider: "distributed cache"}}
}

func (a *distributedCacheAssertions) mocked() storage.MockedDistributedCache {
	if m, ok := a.tc.DistributedCache().(storage.MockedDistributedCache); ok {
		return m
	}
	panic("distributed cache assertions require the mocked distributed cache - the registered distributed cache is " + typeName(a.tc.DistributedCache()))
}

func (a *distributedCacheAssertions) ContainingEntry(key string, value []byte) DistributedCacheAssertions {
	e, found := a.mocked().Entry(key)
	a.containingValue("ContainingEntry", key, value, e.Value, found)
	return a
}

func (a *distributedCacheAssertions) ContainingEntryWithKey(key string) DistributedCacheAssertions {
	_, found := a.mocked().Entry(key)
	a.containingKey("ContainingEntryWithKey", key, found)
	return a
}

func (a *distributedCacheAssertions) ContainingEntryWithOptions(key string, options mvc.CacheEntryOptions) DistributedCacheAssertions {
	e, found := a.mocked().Entry(key)
	a.options("ContainingEntryWithOptions", key, options, e.Options, found)
	return a
}

func (a *distributedCacheAssertions) WithEntriesCount(count int) DistributedCacheAssertions {
	a.count("WithEntriesCount", count, a.mocked().Count())
	return a
}

type MemoryCacheAssertions interface {
	ContainingEntry(key any, value any) MemoryCacheAssertions
	ContainingEntryWithKey(key any) MemoryCacheAssertions
	ContainingEntryOfType(key any, sample any) MemoryCacheAssertions
	ContainingEntryWithOptions(key any, options mvc.CacheEntryOptions) MemoryCacheAssertions
	WithEntriesCount(count int) MemoryCacheAssertions
}

type memoryCacheAssertions struct {
	entryAssertions
}

func newMemoryCacheAssertions(tc *TestContext) MemoryCacheAssertions {
	return &memoryCacheAssertions{entryAssertions{tc: tc, provider: "memory cache"}}
}

func (a *memoryCacheAssertions) mocked() storage.MockedMemoryCache {
	if m, ok := a.tc.MemoryCache().(storage.MockedMemoryCache); ok {
		return m
	}
	panic("memory cache assertions require the mocked memory cache - the registered memory cache is " + typeName(a.tc.MemoryCache()))
}

func (a *memoryCacheAssertions) ContainingEntry(key any, value any) MemoryCacheAssertions {
	actual, found := a.tc.MemoryCache().TryGetValue(key)
	a.containingValue("ContainingEntry", key, value, actual, found)
	return a
}

func (a *memoryCacheAssertions) ContainingEntryWithKey(key any) MemoryCacheAssertions {
	_, found := a.tc.MemoryCache().TryGetValue(key)
	a.containingKey("ContainingEntryWithKey", key, found)
	return a
}

func (a *memoryCacheAssertions) ContainingEntryOfType(key any, sample any) MemoryCacheAssertions {
	actual, found := a.tc.MemoryCache().TryGetValue(key)
	a.containingValueOfType("ContainingEntryOfType", key, sample, actual, found)
	return a
}

func (a *memoryCacheAssertions) ContainingEntryWithOptions(key any, options mvc.CacheEntryOptions) MemoryCacheAssertions {
	e, found := a.mocked().Entry(key)
	a.options("ContainingEntryWithOptions", key, options, e.Options, found)
	return a
}

func (a *memoryCacheAssertions) WithEntriesCount(count int) MemoryCacheAssertions {
	a.count("WithEntriesCount", count, a.mocked().Count())
	return a
}

type TempDataAssertions interface {
	ContainingEntry(key string, value any) TempDataAssertions
	ContainingEntryWithKey(key string) TempDataAssertions
	ContainingEntryOfType(key string, sample any) TempDataAssertions
	WithEntriesCount(count int) TempDataAssertions
}

type tempDataAssertions struct {
	entryAssertions
}

func newTempDataAssertions(tc *TestContext) TempDataAssertions {
	return &tempDataAssertions{entryAssertions{tc: tc, provider: "temp data"}}
}

func (a *tempDataAssertions) ContainingEntry(key string, value any) TempDataAssertions {
	actual, found := a.tc.TempData().Peek(key)
	a.containingValue("ContainingEntry", key, value, actual, found)
	return a
}

func (a *tempDataAssertions) ContainingEntryWithKey(key string) TempDataAssertions {
	a.containingKey("ContainingEntryWithKey", key, a.tc.TempData().ContainsKey(key))
	return a
}

func (a *tempDataAssertions) ContainingEntryOfType(key string, sample any) TempDataAssertions {
	actual, found := a.tc.TempData().Peek(key)
	a.containingValueOfType("ContainingEntryOfType", key, sample, actual, found)
	return a
}

func (a *tempDataAssertions) WithEntriesCount(count int) TempDataAssertions {
	a.count("WithEntriesCount", count, a.tc.TempData().Len())
	return a
}
