package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// BarFetcher is the historical-data side of the quote adapter.
type BarFetcher interface {
	Daily(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCBar, error)
}

// BarWriter persists one symbol's candles; upserts keyed by (symbol, date).
type BarWriter interface {
	UpsertBars(ctx context.Context, bars []models.OHLCBar) error
}

// Syncer pulls daily bars for a fixed symbol list and upserts them into the
// store. One symbol failing never stops the others.
type Syncer struct {
	fetcher BarFetcher
	writer  BarWriter
	logger  *zap.Logger

	symbols []string
	since   time.Time
}

func New(fetcher BarFetcher, writer BarWriter, logger *zap.Logger, symbols []string, since time.Time) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		writer:  writer,
		logger:  logger,
		symbols: symbols,
		since:   since,
	}
}

// SyncOnce runs a full pass over the tracked symbols. Returns the number of
// symbols that synced cleanly.
func (s *Syncer) SyncOnce(ctx context.Context) int {
	s.logger.Info("Starting market data sync", zap.Strings("symbols", s.symbols))

	synced := 0
	for _, symbol := range s.symbols {
		bars, err := s.fetcher.Daily(ctx, symbol, s.since, time.Now())
		if err != nil {
			s.logger.Error("Failed to sync symbol",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if err := s.writer.UpsertBars(ctx, bars); err != nil {
			s.logger.Error("Failed to store bars",
				zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		s.logger.Info("Synced symbol",
			zap.String("symbol", symbol), zap.Int("bars", len(bars)))
		synced++
	}

	s.logger.Info("Market data sync finished", zap.Int("synced", synced))
	return synced
}

// RunDaily syncs once immediately, then again at the given wall-clock time
// (HH:MM) every day until the context is cancelled.
func (s *Syncer) RunDaily(ctx context.Context, at string, loc *time.Location) {
	s.SyncOnce(ctx)

	for {
		wait := untilNext(at, time.Now().In(loc))
		s.logger.Info("Next sync scheduled", zap.Duration("in", wait))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			s.SyncOnce(ctx)
		}
	}
}

// untilNext computes the duration until the next daily occurrence of the
// HH:MM time. A malformed time falls back to 24h.
func untilNext(at string, now time.Time) time.Duration {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 24 * time.Hour
	}

	next := time.Date(now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
