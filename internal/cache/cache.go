// Package cache provides a generic in-memory key/value store with per-entry
// TTL expiry and capacity-bounded LRU eviction. It is the only shared mutable
// state in the search pipeline, so all bookkeeping happens under one mutex.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/prodsearch/internal/domain"
)

// entry is a single cached value with its lifecycle bookkeeping.
type entry[T any] struct {
	value          T
	insertedAt     time.Time
	ttl            time.Duration
	accessCount    int64
	lastAccessedAt time.Time
}

func (e *entry[T]) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) > e.ttl
}

// Cache is a TTL + LRU cache keyed by string.
type Cache[T any] struct {
	mu         sync.Mutex
	entries    map[string]*entry[T]
	maxSize    int
	defaultTTL time.Duration

	hits   int64
	misses int64

	// now is swappable for deterministic expiry tests.
	now func() time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Size    int     `json:"size"`
}

// New creates a cache holding at most maxSize entries. defaultTTL applies
// when Set is called with a zero TTL.
func New[T any](maxSize int, defaultTTL time.Duration) *Cache[T] {
	return &Cache[T]{
		entries:    make(map[string]*entry[T]),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value for key if present and unexpired, recording a hit.
// An expired entry is evicted as a side effect and reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	now := c.now()
	if e.expired(now) {
		delete(c.entries, key)
		c.misses++
		return zero, false
	}

	e.accessCount++
	e.lastAccessedAt = now
	c.hits++
	return e.value, true
}

// Set inserts or overwrites key. When the cache is at capacity and key is
// new, the entry with the oldest lastAccessedAt is evicted first; the scan
// and the insertion happen under the same critical section so concurrent
// Sets cannot corrupt size accounting.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("%w: negative ttl %s", domain.ErrInvalidArgument, ttl)
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.insertedAt = now
		e.ttl = ttl
		e.lastAccessedAt = now
		return nil
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRULocked()
	}

	c.entries[key] = &entry[T]{
		value:          value,
		insertedAt:     now,
		ttl:            ttl,
		lastAccessedAt: now,
	}
	return nil
}

// Delete removes key. Returns whether an entry was present.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Has reports whether key is present and unexpired. Like Get it evicts an
// expired entry, but it does not mutate access stats or hit/miss counters.
func (c *Cache[T]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Clear removes all entries. Hit/miss counters are preserved.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry[T])
}

// InvalidatePattern deletes every key containing substr and returns the
// count removed. Used for targeted invalidation, e.g. all cached results
// for one user.
func (c *Cache[T]) InvalidatePattern(substr string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.Contains(key, substr) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// SweepExpired removes every expired entry regardless of access pattern and
// returns the count removed. This bounds memory for entries never read again.
func (c *Cache[T]) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs SweepExpired on a fixed interval until ctx is cancelled.
func (c *Cache[T]) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.SweepExpired()
			}
		}
	}()
}

// Stats returns current counters. HitRate is 0 before any access.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries)}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Size returns the current entry count.
func (c *Cache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLRULocked removes the single entry with the oldest lastAccessedAt.
// Caller must hold c.mu.
func (c *Cache[T]) evictLRULocked() {
	var lruKey string
	var lruTime time.Time
	first := true
	for key, e := range c.entries {
		if first || e.lastAccessedAt.Before(lruTime) {
			lruKey = key
			lruTime = e.lastAccessedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, lruKey)
	}
}
