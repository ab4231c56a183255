package store

import (
	"context"
	"time"

	"github.com/shubham-shewale/trade-sim/pkg/models"
)

// UserStore is the account/watchlist surface the REST handlers consume.
type UserStore interface {
	UpsertUserByGoogleID(ctx context.Context, googleID, email, name, avatar string) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserCash(ctx context.Context, id string, cash float64) error
	AddToWatchlist(ctx context.Context, id, ticker string) ([]string, error)
	RemoveFromWatchlist(ctx context.Context, id, ticker string) ([]string, error)
}

// TradeStore persists orders and positions.
type TradeStore interface {
	AppendOrder(ctx context.Context, order models.Order) error
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetPosition(ctx context.Context, userID, symbol string) (*models.Position, error)
	UpsertPosition(ctx context.Context, pos models.Position) error
	DeletePosition(ctx context.Context, userID, symbol string) error
	ListPositions(ctx context.Context, userID string) ([]models.Position, error)
	AllPositions(ctx context.Context) ([]models.Position, error)
}

// BarStore holds the daily candles written by the datasync job. Upserts are
// keyed by (symbol, date) so re-syncing a range is idempotent.
type BarStore interface {
	UpsertBars(ctx context.Context, bars []models.OHLCBar) error
	GetBars(ctx context.Context, symbol string, since time.Time) ([]models.OHLCBar, error)
}
