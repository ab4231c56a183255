package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shubham-shewale/trade-sim/internal/store"
	"github.com/shubham-shewale/trade-sim/pkg/models"
)

func setup(t *testing.T) *store.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.NewRedisStore(rdb)
}

func TestUpsertUser_NewAndExisting(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	user, err := s.UpsertUserByGoogleID(ctx, "g-123", "a@b.com", "Alice", "pic1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.Cash != models.StartingCash {
		t.Errorf("new user cash = %v, want %v", user.Cash, models.StartingCash)
	}

	again, err := s.UpsertUserByGoogleID(ctx, "g-123", "a@b.com", "Alice Renamed", "pic2")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("existing google id created a second user")
	}
	if again.Name != "Alice Renamed" {
		t.Errorf("profile fields not refreshed: %q", again.Name)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("ListUsers = %d users, want 1", len(users))
	}
}

func TestUpdateUserCash(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	user, _ := s.UpsertUserByGoogleID(ctx, "g-1", "a@b.com", "Alice", "")
	if err := s.UpdateUserCash(ctx, user.ID, 999.5); err != nil {
		t.Fatalf("update cash: %v", err)
	}

	got, _ := s.GetUser(ctx, user.ID)
	if got.Cash != 999.5 {
		t.Errorf("cash = %v, want 999.5", got.Cash)
	}
}

func TestWatchlist_SetSemantics(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	user, _ := s.UpsertUserByGoogleID(ctx, "g-1", "a@b.com", "Alice", "")

	s.AddToWatchlist(ctx, user.ID, "TCS.NS")
	list, err := s.AddToWatchlist(ctx, user.ID, "TCS.NS") // duplicate
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("watchlist = %v, want single TCS.NS", list)
	}

	list, err = s.RemoveFromWatchlist(ctx, user.ID, "TCS.NS")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("watchlist after remove = %v, want empty", list)
	}

	// Removing an absent ticker is a no-op.
	if _, err := s.RemoveFromWatchlist(ctx, user.ID, "INFY.NS"); err != nil {
		t.Errorf("remove absent: %v", err)
	}
}

func TestOrders_NewestFirst(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	first := models.Order{ID: "o1", UserID: "u1", Symbol: "TCS.NS", Side: models.SideBuy,
		Type: models.OrderTypeMarket, Quantity: 1, Price: 100, Status: models.OrderStatusFilled}
	second := first
	second.ID = "o2"

	s.AppendOrder(ctx, first)
	s.AppendOrder(ctx, second)

	orders, err := s.ListOrders(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o2" || orders[1].ID != "o1" {
		t.Errorf("orders not newest-first: %+v", orders)
	}
}

func TestPositions_UpsertGetDelete(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	pos := models.Position{UserID: "u1", Symbol: "TCS.NS", Quantity: 10, AveragePrice: 3500}
	if err := s.UpsertPosition(ctx, pos); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetPosition(ctx, "u1", "TCS.NS")
	if err != nil || got == nil || got.Quantity != 10 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	// Absent position is (nil, nil), not an error.
	missing, err := s.GetPosition(ctx, "u1", "INFY.NS")
	if err != nil || missing != nil {
		t.Errorf("absent position = %+v, %v; want nil, nil", missing, err)
	}

	if err := s.DeletePosition(ctx, "u1", "TCS.NS"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = s.GetPosition(ctx, "u1", "TCS.NS")
	if got != nil {
		t.Errorf("position survived delete: %+v", got)
	}
}

func TestAllPositions_SpansUsers(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	u1, _ := s.UpsertUserByGoogleID(ctx, "g-1", "a@b.com", "Alice", "")
	u2, _ := s.UpsertUserByGoogleID(ctx, "g-2", "c@d.com", "Bob", "")
	s.UpsertPosition(ctx, models.Position{UserID: u1.ID, Symbol: "TCS.NS", Quantity: 1, AveragePrice: 100})
	s.UpsertPosition(ctx, models.Position{UserID: u2.ID, Symbol: "INFY.NS", Quantity: 2, AveragePrice: 200})

	all, err := s.AllPositions(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("AllPositions = %d, want 2", len(all))
	}
}

func TestBars_UpsertIdempotentAndFiltered(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	bars := []models.OHLCBar{
		{Symbol: "TCS.NS", Date: "2024-01-02", Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Symbol: "TCS.NS", Date: "2024-01-03", Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 20},
	}
	if err := s.UpsertBars(ctx, bars); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Re-syncing the same range must not duplicate.
	if err := s.UpsertBars(ctx, bars); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err := s.GetBars(ctx, "TCS.NS", time.Time{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0].Date != "2024-01-02" || got[1].Date != "2024-01-03" {
		t.Errorf("bars = %+v", got)
	}

	since, _ := time.Parse("2006-01-02", "2024-01-03")
	got, _ = s.GetBars(ctx, "TCS.NS", since)
	if len(got) != 1 || got[0].Date != "2024-01-03" {
		t.Errorf("since filter: %+v", got)
	}
}
