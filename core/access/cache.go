package access

import (
	"sync"
	"time"
)

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

type cacheEntry struct {
	role       Role
	insertedAt time.Time
}

// RoleCache is a process-wide, time-bounded identity -> role cache.
// It is a performance optimization, never a source of truth: entries older
// than the TTL behave as absent and nothing survives a restart.
type RoleCache struct {
	ttl       time.Duration
	highWater int

	mu      sync.Mutex
	entries map[Identity]cacheEntry
}

func NewRoleCache(ttl time.Duration, highWater int) *RoleCache {
	return &RoleCache{
		ttl:       ttl,
		highWater: highWater,
		entries:   make(map[Identity]cacheEntry),
	}
}

// Get returns the cached role for id if its entry is still within the TTL.
// Expired entries are left in place; only Set sweeps.
func (c *RoleCache) Get(id Identity) (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return "", false
	}
	if NowFunc().Sub(entry.insertedAt) >= c.ttl {
		return "", false
	}
	return entry.role, true
}

// Set stores role for id with a fresh timestamp, overwriting any previous
// entry. Once the cache grows past its high-water mark, expired entries are
// swept out; unexpired ones are kept even beyond the mark (soft bound).
func (c *RoleCache) Set(id Identity, role Role) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := NowFunc()
	c.entries[id] = cacheEntry{role: role, insertedAt: now}

	if len(c.entries) > c.highWater {
		for key, entry := range c.entries {
			if now.Sub(entry.insertedAt) >= c.ttl {
				delete(c.entries, key)
			}
		}
	}
}

// Len returns the number of entries currently held, expired ones included.
func (c *RoleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all entries.
func (c *RoleCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Identity]cacheEntry)
}
