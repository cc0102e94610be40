package candles

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketlens/internal/interfaces"
	"marketlens/internal/logger"
	"marketlens/internal/types"

	"github.com/redis/go-redis/v9"
)

// Cached is a read-through TTL cache over a CandleSource. Cache failures
// never fail a load: misses and errors fall through to the next source, and
// writes are best effort.
type Cached struct {
	next interfaces.CandleSource
	rdb  redis.Cmdable
	ttl  time.Duration
}

var _ interfaces.CandleSource = (*Cached)(nil)

// NewCached wraps next with a Redis-backed cache.
func NewCached(next interfaces.CandleSource, rdb redis.Cmdable, ttl time.Duration) *Cached {
	return &Cached{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(symbol string, interval types.Interval, limit int) string {
	return fmt.Sprintf("candles:%s:%s:%d", symbol, interval, limit)
}

func (c *Cached) Load(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Candle, error) {
	key := cacheKey(symbol, interval, limit)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var out []types.Candle
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
		// Corrupt entry: fall through and let the refresh overwrite it.
		logger.Warn(ctx, "Dropping corrupt candle cache entry", "key", key)
	}

	out, err := c.next.Load(ctx, symbol, interval, limit)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			logger.Warn(ctx, "Candle cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}
