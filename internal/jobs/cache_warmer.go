package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Refresher re-reads the dataset into the shared cache.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// CacheWarmer keeps the dataset cache populated in the background so request
// paths rarely pay for a cold fetch.
type CacheWarmer struct {
	cache    Refresher
	interval time.Duration
	timeout  time.Duration
}

// NewCacheWarmer creates a new cache warmer.
func NewCacheWarmer(cache Refresher, interval time.Duration) *CacheWarmer {
	timeout := interval
	if timeout > time.Minute {
		timeout = time.Minute
	}
	return &CacheWarmer{cache: cache, interval: interval, timeout: timeout}
}

// Start begins the refresh loop and blocks until ctx is cancelled.
func (w *CacheWarmer) Start(ctx context.Context) {
	slog.Info("cache warmer started", "interval", w.interval)

	// Run immediately on start
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CacheWarmer) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	n, err := w.cache.Refresh(ctx)
	if err != nil {
		slog.Warn("cache warm failed", "error", err)
		return
	}
	slog.Debug("cache warmed", "rows", n, "duration", time.Since(start))
}
