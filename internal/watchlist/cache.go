// Package watchlist fronts the repository's reconstructed quote-watchlist
// table with a redis TTL cache, so the operational loop's KPI step can read
// the watchlist total without hitting postgres on every run (§4.8, §6).
package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/ports"
)

// DefaultTTL is how long a cached watchlist snapshot is trusted before a
// Get re-reads the repository (§6 WATCHLIST_CACHE_TTL).
const DefaultTTL = 5 * time.Minute

// Cache is a redis-backed read-through cache over ports.Repository's
// watchlist methods, keyed per venue.
type Cache struct {
	redis *redis.Client
	repo  ports.Repository
	ttl   time.Duration
}

func New(rdb *redis.Client, repo ports.Repository, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{redis: rdb, repo: repo, ttl: ttl}
}

func cacheKey(venue domain.Venue) string {
	return fmt.Sprintf("venuematch:watchlist:%s", venue)
}

// Get returns the cached watchlist for venue, falling back to the
// repository and repopulating the cache on a miss.
func (c *Cache) Get(ctx context.Context, venue domain.Venue) ([]domain.WatchlistEntry, error) {
	key := cacheKey(venue)
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var entries []domain.WatchlistEntry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
	} else if err != redis.Nil {
		return nil, fmt.Errorf("watchlist cache get: %w", err)
	}

	entries, err := c.repo.ListWatchlist(ctx, venue)
	if err != nil {
		return nil, fmt.Errorf("watchlist cache miss, repository read: %w", err)
	}
	if encoded, encErr := json.Marshal(entries); encErr == nil {
		_ = c.redis.Set(ctx, key, encoded, c.ttl).Err()
	}
	return entries, nil
}

// Sync rebuilds the repository's watchlist rows for venue from entries
// (the caller's freshly-derived priority ordering, §3) and invalidates the
// cache so the next Get reflects it.
func (c *Cache) Sync(ctx context.Context, venue domain.Venue, entries []domain.WatchlistEntry) error {
	if err := c.repo.ReplaceWatchlist(ctx, venue, entries); err != nil {
		return fmt.Errorf("watchlist sync: %w", err)
	}
	return c.redis.Del(ctx, cacheKey(venue)).Err()
}

// Invalidate drops the cached entry for venue without touching storage.
func (c *Cache) Invalidate(ctx context.Context, venue domain.Venue) error {
	return c.redis.Del(ctx, cacheKey(venue)).Err()
}
