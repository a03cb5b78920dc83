package views

import (
	"context"
	"sync"
	"time"

	"github.com/clipstack/backend/internal/query"
)

type statsEntry struct {
	stats   Stats
	expires time.Time
}

// StatsCache caches ChannelStats results per owner for a TTL. The dashboard
// rollup scans every video of the channel, so repeated loads within the
// window are served from memory.
type StatsCache struct {
	src query.Scanner
	ttl time.Duration

	mu    sync.RWMutex
	items map[string]statsEntry
}

// NewStatsCache returns a cache over the provided scanner with the given TTL.
func NewStatsCache(src query.Scanner, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsCache{
		src:   src,
		ttl:   ttl,
		items: make(map[string]statsEntry),
	}
}

// Load returns cached stats when fresh, otherwise recomputes and stores them.
func (c *StatsCache) Load(ctx context.Context, ownerID string) (Stats, error) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[ownerID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := ChannelStats(ctx, c.src, ownerID)
	if err != nil {
		return Stats{}, err
	}

	c.mu.Lock()
	c.items[ownerID] = statsEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}
