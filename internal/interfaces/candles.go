package interfaces

import (
	"context"

	"marketlens/internal/types"
)

// CandleSource loads an ordered OHLC series for a tracked symbol.
type CandleSource interface {
	// Load fetches up to limit candles (clamped to [1, 500]) ordered
	// ascending by open time. Symbols outside the allow-list are rejected
	// before any network call.
	Load(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Candle, error)
}
