package quotes

import (
	"context"
	"strings"
)

// PriceSource resolves a current price for REST handlers (order execution,
// leaderboard valuation). The cache answers first so handlers never wait on
// the upstream when a live subscription already keeps the symbol warm.
type PriceSource struct {
	cache   *Cache
	fetcher Fetcher
}

func NewPriceSource(cache *Cache, fetcher Fetcher) *PriceSource {
	return &PriceSource{cache: cache, fetcher: fetcher}
}

// Price accepts a bare or suffixed symbol and returns a current market
// price, falling back to a live fetch on a cache miss.
func (s *PriceSource) Price(ctx context.Context, symbol string) (float64, error) {
	ticker := s.fetcher.Suffix(symbol)
	if price, ok := s.cache.Get(bareSymbol(ticker)); ok {
		return price, nil
	}
	return s.fetcher.Quote(ctx, ticker)
}

// bareSymbol strips a ".XX"-style exchange suffix if present.
func bareSymbol(ticker string) string {
	if i := strings.LastIndex(ticker, "."); i > 0 {
		return ticker[:i]
	}
	return ticker
}
