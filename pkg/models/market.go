package models

// Tick is a single synthesized price observation for an exchange-suffixed
// symbol. Timestamp is epoch milliseconds, shared across a broadcast batch.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// PriceUpdate is the batch message pushed to every open websocket client
// each broadcast cycle.
type PriceUpdate struct {
	Event string `json:"event"`
	Ticks []Tick `json:"ticks"`
}

// EventPriceUpdate is the only server-push event type on the wire.
const EventPriceUpdate = "price-update"

// OHLCBar is one daily candle for a symbol, as stored by the datasync job.
type OHLCBar struct {
	Symbol    string  `json:"symbol"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"timestamp"` // unix seconds of the bar date
}
