package cache

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// InMemoryCache stores cache entries in process memory.
type InMemoryCache struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

var _ Cache = (*InMemoryCache)(nil)

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (c *InMemoryCache) lookup(key string) (memoryEntry, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || entry.expired(c.now()) {
		return memoryEntry{}, false
	}
	return entry, true
}

func (c *InMemoryCache) Get(_ context.Context, key string) (io.ReadCloser, error) {
	entry, ok := c.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(entry.value)), nil
}

func (c *InMemoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.lookup(key)
	return ok, nil
}

func (c *InMemoryCache) Put(_ context.Context, key, value string, opts PutOptions) error {
	entry := memoryEntry{value: value}
	if opts.TTL > 0 {
		entry.expires = c.now().Add(opts.TTL)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry
	return nil
}
