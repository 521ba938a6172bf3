package prices

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deflationproof/wheelcast/internal/logger"
)

// Cached wraps a provider with a TTL cache over a fixed symbol universe.
// Reads are lock-cheap; a refresh replaces the whole map at once.
type Cached struct {
	inner   Provider
	ttl     time.Duration
	symbols []string

	mu        sync.RWMutex
	quotes    map[string]float64
	refreshed time.Time
}

// NewCached builds a caching provider over inner for the given universe.
// A zero ttl means entries never expire between explicit refreshes.
func NewCached(inner Provider, ttl time.Duration, symbols []string) *Cached {
	if len(symbols) == 0 {
		symbols = KnownSymbols()
	}
	return &Cached{inner: inner, ttl: ttl, symbols: symbols}
}

func (c *Cached) Secondary() Provider { return c.inner }

// Prices serves from the cache, refreshing first when stale or empty.
func (c *Cached) Prices(ctx context.Context, symbols []string) (map[string]float64, error) {
	c.mu.RLock()
	stale := c.quotes == nil || (c.ttl > 0 && time.Since(c.refreshed) > c.ttl)
	c.mu.RUnlock()

	if stale {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(symbols) == 0 {
		symbols = c.symbols
	}
	out := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if v, ok := c.quotes[s]; ok {
			out[s] = v
		}
	}
	return out, nil
}

// Refresh re-fetches the whole symbol universe from the inner chain.
func (c *Cached) Refresh(ctx context.Context) error {
	quotes, err := c.inner.Prices(ctx, c.symbols)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.quotes = quotes
	c.refreshed = time.Now()
	c.mu.Unlock()
	logger.Infof("event=price_cache_refreshed symbols=%d", len(quotes))
	return nil
}

// ScheduleRefresh starts a cron job refreshing the cache on the given
// spec (e.g. "@every 15m"). The returned cron owns the goroutine; stop it
// on shutdown.
func (c *Cached) ScheduleRefresh(spec string) (*cron.Cron, error) {
	cr := cron.New()
	_, err := cr.AddFunc(spec, func() {
		if err := c.Refresh(context.Background()); err != nil {
			logger.Errorf("event=price_cache_refresh_failed err=%v", err)
		}
	})
	if err != nil {
		return nil, err
	}
	cr.Start()
	return cr, nil
}
