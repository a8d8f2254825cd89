// Package cache provides small time-bounded memoization boxes for expensive
// upstream aggregations. Each box is owned by the serving component and
// injected into the handlers that need it; values are pure functions of time,
// so entries are replaced wholesale on refresh and never field-patched.
//
// There is deliberately no request deduplication: two concurrent misses may
// both fetch upstream, and the later write wins. That matches the upstream
// request budget the caches exist to bound (one refresh per TTL in the steady
// state) without serializing readers behind a fetch.
package cache

import (
	"sync"
	"time"
)

// Entry pairs a cached value with the time it was stored.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Box memoizes a single value for a fixed TTL.
type Box[T any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	ent *Entry[T]
}

// NewBox creates an empty Box with the given TTL.
func NewBox[T any](ttl time.Duration) *Box[T] {
	return &Box[T]{ttl: ttl}
}

// Get returns the cached value if it is younger than the TTL.
func (b *Box[T]) Get() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.ent == nil || time.Since(b.ent.FetchedAt) >= b.ttl {
		var zero T
		return zero, false
	}
	return b.ent.Value, true
}

// Put stores v with the current timestamp, replacing any prior entry.
func (b *Box[T]) Put(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ent = &Entry[T]{Value: v, FetchedAt: time.Now()}
}

// Keyed memoizes one value per key, each with its own timestamp.
type Keyed[T any] struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]*Entry[T]
}

// NewKeyed creates an empty Keyed cache with the given TTL.
func NewKeyed[T any](ttl time.Duration) *Keyed[T] {
	return &Keyed[T]{ttl: ttl, m: make(map[string]*Entry[T])}
}

// Get returns the cached value for key if it is younger than the TTL.
func (k *Keyed[T]) Get(key string) (T, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	ent, ok := k.m[key]
	if !ok || time.Since(ent.FetchedAt) >= k.ttl {
		var zero T
		return zero, false
	}
	return ent.Value, true
}

// Put stores v under key with the current timestamp.
func (k *Keyed[T]) Put(key string, v T) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = &Entry[T]{Value: v, FetchedAt: time.Now()}
}
