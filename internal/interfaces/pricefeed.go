package interfaces

import "marketlens/internal/types"

// PriceFeed exposes read-only snapshots of the live price state. Safe for
// concurrent readers.
type PriceFeed interface {
	Snapshot(symbol string) types.PriceSnapshot
}
