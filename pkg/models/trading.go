package models

import "time"

// StartingCash is the simulated cash every new user begins with.
const StartingCash = 1_000_000.0

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrderTypeMarket = "MARKET"

	OrderStatusFilled = "FILLED"
)

// User is the account document. Watchlist holds exchange-suffixed symbols.
type User struct {
	ID        string    `json:"id"`
	GoogleID  string    `json:"google_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Cash      float64   `json:"cash"`
	Watchlist []string  `json:"watchlist"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is an executed simulated order. Orders fill immediately at the
// market price, so Status is always FILLED today.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Position is a user's holding in one symbol. One document per
// (user, symbol); deleted when quantity reaches zero.
type Position struct {
	UserID       string  `json:"user_id"`
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
}

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Name           string  `json:"name"`
	PortfolioValue float64 `json:"portfolioValue"`
	PercentageGain float64 `json:"percentageGain"`
}
