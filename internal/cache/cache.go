// Package cache provides the TTL result cache for query tools, keyed by
// tool name plus canonicalized parameters, with singleflight deduplication
// so concurrent misses for one key trigger a single computation.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL matches the upstream service's thirty-minute result lifetime.
const DefaultTTL = 30 * time.Minute

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is a thread-safe expiring cache. Expired entries are evicted
// lazily on access; an optional background sweeper reclaims entries that
// are never touched again.
type TTLCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry
	hits    int64
	misses  int64

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// New creates a TTLCache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTLCache{
		ttl:       ttl,
		entries:   make(map[string]entry),
		sweepStop: make(chan struct{}),
	}
}

// Key canonicalizes a tool call into a cache key: parameter order never
// matters, so logically identical calls share an entry.
func Key(tool string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(tool)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%v", name, params[name])
	}
	return b.String()
}

// Get returns the cached value for key if present and unexpired. An
// expired entry is evicted on the spot.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.miss()
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.miss()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Set stores a value under key with the cache's TTL.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key, or runs compute exactly
// once per key across concurrent callers and caches its result. A compute
// failure is returned to every waiter and nothing is cached; cancellation
// of the leading caller's context fails the computation for all of them.
// The second return reports whether the value came from cache.
func (c *TTLCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (any, error)) (any, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// Double-check inside singleflight: a concurrent caller may have
		// populated the entry between the miss and the Do. The stat-free
		// lookup keeps one logical call from counting two misses.
		if value, ok := c.lookup(key); ok {
			return value, nil
		}
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, false, nil
}

// lookup reads an unexpired entry without touching the hit/miss counters
// or evicting. Internal reads use it so counter-bearing Get reflects one
// observation per caller-facing access.
func (c *TTLCache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Invalidate removes one entry.
func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes all entries.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stats returns a snapshot of the hit/miss counters and entry count.
func (c *TTLCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// StartSweeper launches a background goroutine that evicts expired entries
// every interval until Stop is called. Safe to skip entirely; lazy
// eviction alone keeps reads correct.
func (c *TTLCache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.sweepStop:
				return
			}
		}
	}()
}

// Stop terminates the background sweeper. Idempotent.
func (c *TTLCache) Stop() {
	c.sweepOnce.Do(func() { close(c.sweepStop) })
}

func (c *TTLCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

func (c *TTLCache) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
