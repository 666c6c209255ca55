package embcache

import (
	"context"
	"time"

	"github.com/kailas-cloud/prodsearch/internal/cache"
	"github.com/kailas-cloud/prodsearch/internal/db"
)

// MemoryStore adapts the in-process TTL cache to the key-value store
// contract, for deployments without Redis.
type MemoryStore struct {
	c *cache.Cache[[]byte]
}

// NewMemoryStore creates an in-process embedding store.
func NewMemoryStore(maxSize int, defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{c: cache.New[[]byte](maxSize, defaultTTL)}
}

// Get returns the stored bytes or db.ErrKeyNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.c.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

// Set stores value under key with the cache's default TTL.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	return m.c.Set(key, value, 0)
}
