// Package candles loads and normalizes OHLC history from the Binance spot
// REST API.
package candles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"marketlens/internal/interfaces"
	"marketlens/internal/metrics"
	"marketlens/internal/trace"
	"marketlens/internal/types"
)

const (
	// MaxLimit is the Binance klines request cap; Load clamps to it.
	MaxLimit = 500
)

// Config holds the candle source settings.
type Config struct {
	BaseURL string
	Symbols []string
}

// Binance fetches klines over HTTP and converts them into ordered Candle
// series.
type Binance struct {
	cfg     Config
	client  *http.Client
	allowed map[string]bool
}

var _ interfaces.CandleSource = (*Binance)(nil)

// NewBinance creates a candle source restricted to the configured symbol
// allow-list.
func NewBinance(cfg Config, client *http.Client) *Binance {
	if client == nil {
		client = http.DefaultClient
	}
	allowed := make(map[string]bool, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		allowed[strings.ToUpper(s)] = true
	}
	return &Binance{cfg: cfg, client: client, allowed: allowed}
}

// Load fetches up to limit candles for the symbol, ordered ascending by open
// time. The symbol must belong to the allow-list; the limit is clamped to
// [1, 500].
func (b *Binance) Load(ctx context.Context, symbol string, interval types.Interval, limit int) ([]types.Candle, error) {
	if !b.allowed[symbol] {
		return nil, &types.InvalidSymbolError{Symbol: symbol}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	ctx, span := trace.StartSpan(ctx, "candles.Load")
	defer span.End()

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", string(interval))
	q.Set("limit", strconv.Itoa(limit))
	u := fmt.Sprintf("%s/klines?%s", b.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &types.UpstreamFetchError{Err: err}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		metrics.CandleFetches.WithLabelValues("error").Inc()
		return nil, &types.UpstreamFetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.CandleFetches.WithLabelValues("error").Inc()
		return nil, &types.UpstreamFetchError{Status: resp.StatusCode, Body: string(body)}
	}

	var rows [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		metrics.CandleFetches.WithLabelValues("error").Inc()
		return nil, &types.UpstreamFetchError{Err: fmt.Errorf("decode klines: %w", err)}
	}

	out, err := convertRows(rows)
	if err != nil {
		metrics.CandleFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CandleFetches.WithLabelValues("ok").Inc()
	return out, nil
}

// convertRows maps raw kline rows [openTime_ms, o, h, l, c, v, ...] onto
// Candles and enforces the series invariants: ascending open times with no
// duplicates.
func convertRows(rows [][]json.RawMessage) ([]types.Candle, error) {
	out := make([]types.Candle, 0, len(rows))
	var prev int64
	for i, row := range rows {
		if len(row) < 6 {
			return nil, &types.UpstreamFetchError{Err: fmt.Errorf("kline row %d has %d fields, want at least 6", i, len(row))}
		}

		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, &types.UpstreamFetchError{Err: fmt.Errorf("kline row %d open time: %w", i, err)}
		}

		vals := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			var s string
			if err := json.Unmarshal(row[j], &s); err != nil {
				return nil, &types.UpstreamFetchError{Err: fmt.Errorf("kline row %d field %d: %w", i, j, err)}
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &types.UpstreamFetchError{Err: fmt.Errorf("kline row %d field %d: %w", i, j, err)}
			}
			vals[j-1] = v
		}

		c := types.Candle{
			Time:  openMs / 1000,
			Open:  vals[0],
			High:  vals[1],
			Low:   vals[2],
			Close: vals[3],
			Vol:   vals[4],
		}
		if i > 0 && c.Time <= prev {
			return nil, &types.UpstreamFetchError{Err: fmt.Errorf("kline row %d out of order: open %d after %d", i, c.Time, prev)}
		}
		prev = c.Time
		out = append(out, c)
	}
	return out, nil
}
