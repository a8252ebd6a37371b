package aicache

import (
	"sync"
	"time"

	"github.com/caroarena/moderation-backend/internal/aiclient"
)

// DefaultTTL bounds how long an analysis verdict stays reusable.
const DefaultTTL = time.Hour

// Entry is one cached verdict, keyed by match and analysis tier.
type Entry struct {
	Data      *aiclient.AnalysisResult
	CreatedAt time.Time
	ExpiresAt time.Time
	MatchID   string
	Tier      string
}

// Cache memoizes external analysis results per (match, tier) with TTL
// expiry. It owns its storage and its clock so TTL behavior is
// deterministic under test. All operations are safe for concurrent use;
// caching is best-effort and no operation ever fails.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildKey is the fixed cache key format: "{matchID}:{tier}".
func BuildKey(matchID, tier string) string {
	return matchID + ":" + tier
}

// Get returns the cached result for (matchID, tier), or nil on a miss.
// An expired entry reads as a miss and is evicted on the way out.
func (c *Cache) Get(matchID, tier string) *aiclient.AnalysisResult {
	key := BuildKey(matchID, tier)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if current, ok := c.entries[key]; ok && c.now().After(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil
	}

	return entry.Data
}

// Set stores a result under (matchID, tier), overwriting any existing entry.
// A non-positive ttl falls back to the cache default.
func (c *Cache) Set(matchID, tier string, result *aiclient.AnalysisResult, ttl time.Duration) {
	if result == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.now()

	c.mu.Lock()
	c.entries[BuildKey(matchID, tier)] = Entry{
		Data:      result,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		MatchID:   matchID,
		Tier:      tier,
	}
	c.mu.Unlock()
}

// Delete removes the entry for (matchID, tier) if present.
func (c *Cache) Delete(matchID, tier string) {
	c.mu.Lock()
	delete(c.entries, BuildKey(matchID, tier))
	c.mu.Unlock()
}

// Has reports whether a live entry exists for (matchID, tier).
func (c *Cache) Has(matchID, tier string) bool {
	c.mu.RLock()
	entry, ok := c.entries[BuildKey(matchID, tier)]
	c.mu.RUnlock()
	return ok && !c.now().After(entry.ExpiresAt)
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	return n
}

// Cleanup sweeps all expired entries and returns how many were evicted.
func (c *Cache) Cleanup() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
