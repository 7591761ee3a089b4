// Package memory provides an in-memory TTL cache for repository answers.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/askrepo-ai/askrepo/pkg/models"
)

type entry struct {
	value     string
	createdAt time.Time
}

// Cache memoizes answers keyed by question and repository identity.
// Entries older than the TTL are treated as absent; there is no item
// count bound.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a Cache with the given entry TTL.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Key derives the cache key for a question against a repository. The
// same (query, owner, repo) triple always derives the same key, across
// process restarts.
func Key(query, owner, repo string) string {
	h := sha256.Sum256([]byte(query + "|" + owner + "|" + repo))
	return hex.EncodeToString(h[:])
}

// Get returns the cached answer for the triple, or false when no live
// entry exists. An expired entry observed here is deleted.
func (c *Cache) Get(query, owner, repo string) (string, bool) {
	key := Key(query, owner, repo)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && time.Since(e.createdAt) > c.ttl {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set inserts or overwrites the entry for the triple with the current time.
func (c *Cache) Set(query, owner, repo, value string) {
	key := Key(query, owner, repo)
	c.mu.Lock()
	c.entries[key] = entry{value: value, createdAt: time.Now()}
	c.mu.Unlock()
}

// Clear removes all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// ClearExpired sweeps every entry older than the TTL.
func (c *Cache) ClearExpired() {
	now := time.Now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Stats sweeps expired entries, then reports the live entry count, the
// configured TTL, and hit/miss counters.
func (c *Cache) Stats() models.CacheStats {
	c.ClearExpired()

	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()

	return models.CacheStats{
		TotalEntries: n,
		TTLSeconds:   int64(c.ttl.Seconds()),
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
	}
}
