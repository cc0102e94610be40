// Package stream maintains the multiplexed Binance ticker connection and
// exposes per-symbol live price snapshots.
package stream

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketlens/internal/interfaces"
	"marketlens/internal/logger"
	"marketlens/internal/metrics"
	"marketlens/internal/types"

	"github.com/gorilla/websocket"
)

// Conn is the subset of the websocket connection the consumer reads from.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens one live-feed connection. Injected so the reconnect machine
// is testable without real network timing.
type Dialer interface {
	DialContext(ctx context.Context, url string) (Conn, error)
}

type gorillaDialer struct{}

func (gorillaDialer) DialContext(ctx context.Context, u string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StreamURL builds the combined-stream URL carrying ticker updates for all
// tracked symbols.
func StreamURL(base string, symbols []string) string {
	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, strings.ToLower(s)+"@ticker")
	}
	return base + "?streams=" + url.QueryEscape(strings.Join(streams, "/"))
}

// Consumer owns the live-price state for all tracked symbols. It is the
// only writer; any number of goroutines may read snapshots concurrently.
type Consumer struct {
	url     string
	symbols []string
	dial    Dialer
	delay   time.Duration

	mu        sync.RWMutex
	prices    map[string]float64
	connected bool
	lastErr   string

	done chan struct{}
}

var _ interfaces.PriceFeed = (*Consumer)(nil)

// Option configures a Consumer.
type Option func(*Consumer)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Consumer) { c.dial = d }
}

// WithReconnectDelay replaces the fixed delay between reconnect attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Consumer) { c.delay = d }
}

func New(streamURL string, symbols []string, opts ...Option) *Consumer {
	c := &Consumer{
		url:     StreamURL(streamURL, symbols),
		symbols: symbols,
		dial:    gorillaDialer{},
		delay:   3 * time.Second,
		prices:  make(map[string]float64, len(symbols)),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the connect loop in the background. The loop reconnects
// indefinitely after each drop and only stops when ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the consumer loop has fully stopped.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)
	for {
		if ctx.Err() != nil {
			return
		}

		c.runOnce(ctx)
		c.setDisconnected()

		if ctx.Err() != nil {
			return
		}
		metrics.Reconnects.Inc()
		logger.Info(ctx, "Live feed disconnected, scheduling reconnect", "delay", c.delay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.delay):
		}
	}
}

// runOnce makes a single connection attempt and reads until the connection
// closes or ctx is cancelled.
func (c *Consumer) runOnce(ctx context.Context) {
	conn, err := c.dial.DialContext(ctx, c.url)
	if err != nil {
		c.setError(err)
		return
	}

	// A fresh successful connection clears the sticky error.
	c.setConnected()
	logger.Info(ctx, "Live feed connected", "symbols", len(c.symbols))

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watcherDone:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if ctx.Err() == nil {
				c.setError(err)
			}
			return
		}
		c.handleMessage(msg)
	}
}

type tickerEnvelope struct {
	Stream string `json:"stream"`
	Data   struct {
		C string `json:"c"`
	} `json:"data"`
}

// handleMessage applies one tick. The originating symbol is matched by
// stream-name prefix; updates are last-write-wins.
func (c *Consumer) handleMessage(msg []byte) {
	var env tickerEnvelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return // ignore unparseable frames
	}
	if env.Data.C == "" {
		return
	}
	price, err := strconv.ParseFloat(env.Data.C, 64)
	if err != nil {
		return
	}

	for _, sym := range c.symbols {
		if strings.HasPrefix(env.Stream, strings.ToLower(sym)) {
			c.mu.Lock()
			c.prices[sym] = price
			c.mu.Unlock()
			metrics.TicksReceived.WithLabelValues(sym).Inc()
			return
		}
	}
}

func (c *Consumer) setConnected() {
	c.mu.Lock()
	c.connected = true
	c.lastErr = ""
	c.mu.Unlock()
}

func (c *Consumer) setDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

// setError records a sticky error: the first one wins until a fresh
// successful connection clears it.
func (c *Consumer) setError(err error) {
	c.mu.Lock()
	if c.lastErr == "" {
		c.lastErr = err.Error()
	}
	c.mu.Unlock()
}

// Snapshot returns the live state for one symbol. Prices survive
// reconnects; an untracked symbol reports a zero price.
func (c *Consumer) Snapshot(symbol string) types.PriceSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return types.PriceSnapshot{
		Price:     c.prices[symbol],
		Connected: c.connected,
		Error:     c.lastErr,
	}
}
