package cache

import (
	"context"
	"sync"
	"time"

	"blognest/domain"
)

// Memory is an in-process PageCache. It serves the dev setup and tests,
// where no Redis instance is around. Expired entries are dropped lazily
// on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// NewMemory returns an in-memory page cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
	}
}

// Ensure the Memory struct properly implements the domain.PageCache
// interface.
var _ domain.PageCache = &Memory{}

// Get returns the cached body for the key, if present and not expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// The entry may have been replaced between the two locks.
		// Only drop it if it is still expired.
		if entry, ok := c.entries[key]; ok && time.Now().After(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

// Set stores the body under the key with the configured TTL.
func (c *Memory) Set(_ context.Context, key string, body []byte) error {
	c.mu.Lock()
	c.entries[key] = memoryEntry{
		body:      body,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	return nil
}

// Clear wipes the whole cache at once.
func (c *Memory) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
	return nil
}
