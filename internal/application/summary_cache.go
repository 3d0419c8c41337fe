package application

import (
	"sync"
	"time"
)

// summaryCache stores recently computed dashboard summaries so repeated KPI
// reads do not rescan the event and metrics collections while nothing has
// changed for that user.
type summaryCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]summaryCacheEntry
}

type summaryCacheEntry struct {
	summary   Summary
	expiresAt time.Time
}

func newSummaryCache(ttl time.Duration, maxEntries int, now func() time.Time) *summaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &summaryCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]summaryCacheEntry),
	}
}

func (c *summaryCache) Get(userID string) (Summary, bool) {
	if c == nil {
		return Summary{}, false
	}
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return Summary{}, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return Summary{}, false
	}
	return entry.summary, true
}

func (c *summaryCache) Store(userID string, summary Summary) {
	if c == nil {
		return
	}
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[userID] = summaryCacheEntry{summary: summary, expiresAt: expiry}
}

// Invalidate drops the cached summary for one user, or everything when the
// user id is empty.
func (c *summaryCache) Invalidate(userID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if userID == "" {
		c.entries = make(map[string]summaryCacheEntry)
	} else {
		delete(c.entries, userID)
	}
	c.mu.Unlock()
}

func (c *summaryCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *summaryCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
