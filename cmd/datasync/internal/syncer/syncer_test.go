package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

type fakeFetcher struct {
	bars  map[string][]models.OHLCBar
	fails map[string]error
	calls []string
}

func (f *fakeFetcher) Daily(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCBar, error) {
	f.calls = append(f.calls, ticker)
	if err, ok := f.fails[ticker]; ok {
		return nil, err
	}
	return f.bars[ticker], nil
}

type fakeWriter struct {
	written map[string]int
	err     error
}

func (f *fakeWriter) UpsertBars(ctx context.Context, bars []models.OHLCBar) error {
	if f.err != nil {
		return f.err
	}
	for _, bar := range bars {
		f.written[bar.Symbol]++
	}
	return nil
}

func TestSyncOnce_FailureIsolatedPerSymbol(t *testing.T) {
	fetcher := &fakeFetcher{
		bars: map[string][]models.OHLCBar{
			"TCS.NS":  {{Symbol: "TCS.NS", Date: "2024-01-02"}},
			"INFY.NS": {{Symbol: "INFY.NS", Date: "2024-01-02"}},
		},
		fails: map[string]error{"RELIANCE.NS": errors.New("upstream down")},
	}
	writer := &fakeWriter{written: make(map[string]int)}

	s := New(fetcher, writer, zap.NewNop(),
		[]string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}, time.Now().AddDate(-1, 0, 0))

	if synced := s.SyncOnce(context.Background()); synced != 2 {
		t.Errorf("synced = %d, want 2", synced)
	}
	if writer.written["TCS.NS"] != 1 || writer.written["INFY.NS"] != 1 {
		t.Errorf("written = %v", writer.written)
	}
	if len(fetcher.calls) != 3 {
		t.Errorf("one failure stopped the pass: calls = %v", fetcher.calls)
	}
}

func TestSyncOnce_WriteFailureCounted(t *testing.T) {
	fetcher := &fakeFetcher{
		bars: map[string][]models.OHLCBar{"TCS.NS": {{Symbol: "TCS.NS", Date: "2024-01-02"}}},
	}
	writer := &fakeWriter{written: make(map[string]int), err: errors.New("store down")}

	s := New(fetcher, writer, zap.NewNop(), []string{"TCS.NS"}, time.Now())
	if synced := s.SyncOnce(context.Background()); synced != 0 {
		t.Errorf("synced = %d, want 0", synced)
	}
}

func TestUntilNext(t *testing.T) {
	now := time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)

	if got := untilNext("20:00", now); got != 90*time.Minute {
		t.Errorf("untilNext before target = %v, want 90m", got)
	}
	if got := untilNext("18:00", now); got != 23*time.Hour+30*time.Minute {
		t.Errorf("untilNext after target = %v, want 23h30m", got)
	}
	if got := untilNext("garbage", now); got != 24*time.Hour {
		t.Errorf("untilNext fallback = %v, want 24h", got)
	}
}
