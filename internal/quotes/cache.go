package quotes

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher is the quote-source boundary the cache refreshes through.
type Fetcher interface {
	Quote(ctx context.Context, ticker string) (float64, error)
	Suffix(symbol string) string
}

type entry struct {
	price     float64
	fetchedAt time.Time
}

// Cache maps bare symbols to their last observed real price. Entries are
// written only by the slow refresh cycle and by first-subscription warmup;
// the fast broadcast cycle only reads. Entries are never evicted.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	fetcher Fetcher
	logger  *zap.Logger
}

func NewCache(fetcher Fetcher, logger *zap.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		fetcher: fetcher,
		logger:  logger,
	}
}

// Get returns the last cached price for a bare symbol, or false if the
// symbol has never been fetched successfully.
func (c *Cache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	return e.price, ok
}

// Snapshot copies all current (symbol, price) pairs. This is the
// broadcaster's per-cycle input.
func (c *Cache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]float64, len(c.entries))
	for sym, e := range c.entries {
		snap[sym] = e.price
	}
	return snap
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RefreshAll re-fetches every given symbol concurrently and overwrites the
// cache entry on success. A failed fetch logs, keeps the previous entry and
// never cancels the other symbols' fetches. Returns once all fetches join.
func (c *Cache) RefreshAll(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	c.logger.Info("Refreshing real prices", zap.Strings("symbols", symbols))

	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			c.fetch(ctx, sym)
		}(sym)
	}
	wg.Wait()
}

// EnsureSymbols fetches any symbols with no cache entry yet, so the first
// broadcast after a new subscription is not empty. Already-cached symbols
// are left alone.
func (c *Cache) EnsureSymbols(ctx context.Context, symbols []string) {
	var missing []string
	c.mu.RLock()
	for _, sym := range symbols {
		if _, ok := c.entries[sym]; !ok {
			missing = append(missing, sym)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return
	}
	c.RefreshAll(ctx, missing)
}

func (c *Cache) fetch(ctx context.Context, symbol string) {
	price, err := c.fetcher.Quote(ctx, c.fetcher.Suffix(symbol))
	if err != nil {
		c.logger.Warn("Failed to fetch price",
			zap.String("symbol", symbol), zap.Error(err))
		return
	}

	c.mu.Lock()
	c.entries[symbol] = entry{price: price, fetchedAt: time.Now()}
	c.mu.Unlock()
}
