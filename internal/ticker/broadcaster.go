package ticker

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// PriceCache is the broadcaster's read side of the quote cache.
type PriceCache interface {
	Snapshot() map[string]float64
	RefreshAll(ctx context.Context, symbols []string)
}

// Registry is the subscription state the two loops consult.
type Registry interface {
	ActiveSymbols() []string
	BroadcastAll(payload []byte)
}

// Suffixer maps a bare symbol to its exchange-qualified wire form.
type Suffixer interface {
	Suffix(symbol string) string
}

// Broadcaster runs the two periodic tasks: the fast tick cycle that
// synthesizes jittered prices from the cache and fans them out, and the
// slow cycle that re-fetches real prices for the active symbol set.
type Broadcaster struct {
	cache    PriceCache
	registry Registry
	suffixer Suffixer
	logger   *zap.Logger

	tickEvery    time.Duration
	refreshEvery time.Duration
	jitterBound  float64
}

func NewBroadcaster(
	cache PriceCache,
	registry Registry,
	suffixer Suffixer,
	logger *zap.Logger,
	tickEvery, refreshEvery time.Duration,
	jitterBound float64,
) *Broadcaster {
	return &Broadcaster{
		cache:        cache,
		registry:     registry,
		suffixer:     suffixer,
		logger:       logger,
		tickEvery:    tickEvery,
		refreshEvery: refreshEvery,
		jitterBound:  jitterBound,
	}
}

// Run drives both loops until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	go b.runRefresh(ctx)
	b.runTicks(ctx)
}

func (b *Broadcaster) runTicks(ctx context.Context) {
	t := time.NewTicker(b.tickEvery)
	defer t.Stop()

	b.logger.Info("Broadcaster started", zap.Duration("interval", b.tickEvery))
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			b.tickOnce(now)
		}
	}
}

func (b *Broadcaster) runRefresh(ctx context.Context) {
	t := time.NewTicker(b.refreshEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			symbols := b.registry.ActiveSymbols()
			if len(symbols) == 0 {
				continue
			}
			b.cache.RefreshAll(ctx, symbols)
		}
	}
}

// tickOnce executes one broadcast cycle. An empty cache is a silent no-op:
// no send, no log. Returns the number of ticks in the batch.
func (b *Broadcaster) tickOnce(now time.Time) int {
	snap := b.cache.Snapshot()
	if len(snap) == 0 {
		return 0
	}

	payload, err := json.Marshal(b.buildBatch(snap, now))
	if err != nil {
		b.logger.Error("Failed to encode tick batch", zap.Error(err))
		return 0
	}

	b.registry.BroadcastAll(payload)
	return len(snap)
}

// buildBatch synthesizes one tick per cached symbol: the real price plus a
// small symmetric jitter, rounded to 2 decimals. The jitter simulates
// intra-interval movement between refreshes and never feeds back into the
// cache.
func (b *Broadcaster) buildBatch(snap map[string]float64, now time.Time) models.PriceUpdate {
	symbols := make([]string, 0, len(snap))
	for sym := range snap {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	ts := now.UnixMilli()
	ticks := make([]models.Tick, 0, len(symbols))
	for _, sym := range symbols {
		jitter := (rand.Float64()*2 - 1) * b.jitterBound
		price := snap[sym] * (1 + jitter)
		ticks = append(ticks, models.Tick{
			Symbol:    b.suffixer.Suffix(sym),
			Price:     round2(price),
			Timestamp: ts,
		})
	}

	return models.PriceUpdate{Event: models.EventPriceUpdate, Ticks: ticks}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
