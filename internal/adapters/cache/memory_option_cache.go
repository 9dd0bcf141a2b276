package cache

import (
	"sync"

	"github.com/logikasistembisnis/spartaepicorextention-sub000/internal/domain"
)

// In-memory option cache scoped to a single process, used by tests and
// as the default when no cache database is configured.
type MemoryOptionCache struct {
	mu sync.RWMutex
	m  map[string][]domain.LookupOption
}

func NewMemoryOptionCache() *MemoryOptionCache {
	return &MemoryOptionCache{m: map[string][]domain.LookupOption{}}
}

func cacheKey(kind domain.LookupKind, key string) string {
	return string(kind) + "|" + key
}

func (c *MemoryOptionCache) Get(kind domain.LookupKind, key string) ([]domain.LookupOption, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts, ok := c.m[cacheKey(kind, key)]
	return opts, ok, nil
}

func (c *MemoryOptionCache) Put(kind domain.LookupKind, key string, opts []domain.LookupOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[cacheKey(kind, key)] = opts
	return nil
}
