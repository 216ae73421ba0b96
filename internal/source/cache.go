package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"crimestats/internal/metrics"
	"crimestats/internal/store"
)

// Cache is a byte store with per-entry expiry. A miss returns nil, nil.
// *redis.Storage from gofiber/storage satisfies it.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// MemoryCache adapts go-cache to Cache for single-instance deployments.
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates an in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

// Get implements Cache.
func (m *MemoryCache) Get(key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}
	return v.([]byte), nil
}

// Set implements Cache.
func (m *MemoryCache) Set(key string, val []byte, exp time.Duration) error {
	m.c.Set(key, val, exp)
	return nil
}

// DefaultFillTimeout bounds one shared upstream fetch.
const DefaultFillTimeout = time.Minute

// Cached is a read-through cache in front of another source. Concurrent misses
// share one upstream fetch. A TTL of zero disables caching.
//
// The shared fetch does not run on any single caller's context: a caller that
// gives up stops waiting, but the fetch continues for everyone else until it
// completes or FillTimeout elapses.
type Cached struct {
	src         Source
	cache       Cache
	ttl         time.Duration
	key         string
	group       singleflight.Group
	FillTimeout time.Duration
}

// NewCached wraps src.
func NewCached(src Source, cache Cache, ttl time.Duration) *Cached {
	return &Cached{
		src:         src,
		cache:       cache,
		ttl:         ttl,
		key:         "crimestats:dataset:" + src.Name(),
		FillTimeout: DefaultFillTimeout,
	}
}

// Name implements Source.
func (c *Cached) Name() string { return c.src.Name() }

// Fetch implements Source.
func (c *Cached) Fetch(ctx context.Context) ([]store.RawRow, error) {
	if c.ttl <= 0 || c.cache == nil {
		return c.src.Fetch(ctx)
	}

	if rows, ok := c.lookup(); ok {
		metrics.CacheHit()
		return rows, nil
	}
	metrics.CacheMiss()

	return c.shared(ctx)
}

// Refresh re-reads the upstream source and replaces the cached copy.
func (c *Cached) Refresh(ctx context.Context) (int, error) {
	rows, err := c.shared(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// shared joins or starts the in-flight fill and waits for it or for ctx,
// whichever comes first.
func (c *Cached) shared(ctx context.Context) ([]store.RawRow, error) {
	timeout := c.FillTimeout
	if timeout <= 0 {
		timeout = DefaultFillTimeout
	}
	ch := c.group.DoChan(c.key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		return c.fill(fillCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]store.RawRow), nil
	}
}

func (c *Cached) lookup() ([]store.RawRow, bool) {
	b, err := c.cache.Get(c.key)
	if err != nil {
		slog.Warn("dataset cache read failed", "key", c.key, "error", err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}

	var rows []store.RawRow
	if err := json.Unmarshal(b, &rows); err != nil {
		slog.Warn("dataset cache entry is corrupt", "key", c.key, "error", err)
		return nil, false
	}
	return rows, true
}

func (c *Cached) fill(ctx context.Context) ([]store.RawRow, error) {
	rows, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache == nil || c.ttl <= 0 {
		return rows, nil
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(c.key, b, c.ttl); err != nil {
		slog.Warn("dataset cache write failed", "key", c.key, "error", err)
	}
	return rows, nil
}
