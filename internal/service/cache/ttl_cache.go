package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	b   []byte
	exp time.Time // zero never expires
}

// Clock returns the current time.
type Clock func() time.Time

// TTLCache is the in-process BytesCache. Expiry is judged by an injected
// clock. When maxEntries is reached, expired entries are swept and then the
// entry closest to expiry is evicted.
type TTLCache struct {
	mu         sync.Mutex
	m          map[string]entry
	now        Clock
	maxEntries int
}

// NewTTLCache creates a cache holding at most maxEntries keys; zero is unbounded.
func NewTTLCache(now Clock, maxEntries int) *TTLCache {
	if now == nil {
		now = time.Now
	}
	return &TTLCache{m: make(map[string]entry), now: now, maxEntries: maxEntries}
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	if c.expired(e, c.now()) {
		delete(c.m, key)
		return nil, false, nil
	}
	return e.b, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists && c.maxEntries > 0 && len(c.m) >= c.maxEntries {
		c.evict(now)
	}
	c.m[key] = entry{b: value, exp: exp}
	return nil
}

// Len counts entries, expired ones included until they are read or swept.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

func (c *TTLCache) expired(e entry, now time.Time) bool {
	return !e.exp.IsZero() && !now.Before(e.exp)
}

func (c *TTLCache) evict(now time.Time) {
	victim := ""
	var soonest time.Time
	for k, e := range c.m {
		if c.expired(e, now) {
			delete(c.m, k)
			continue
		}
		if e.exp.IsZero() {
			continue
		}
		if victim == "" || e.exp.Before(soonest) {
			victim, soonest = k, e.exp
		}
	}
	if len(c.m) < c.maxEntries {
		return
	}
	if victim == "" {
		// Only non-expiring entries left; drop an arbitrary one.
		for k := range c.m {
			victim = k
			break
		}
	}
	delete(c.m, victim)
}
