package candles

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"marketlens/internal/types"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	candles []types.Candle
	err     error
	calls   int
}

func (s *stubSource) Load(_ context.Context, _ string, _ types.Interval, _ int) ([]types.Candle, error) {
	s.calls++
	return s.candles, s.err
}

var sampleCandles = []types.Candle{
	{Time: 1700000000, Open: 64000, High: 66000, Low: 63000, Close: 65000, Vol: 10},
	{Time: 1700086400, Open: 65000, High: 67000, Low: 64500, Close: 66500, Vol: 12},
}

func TestCachedMissFetchesAndStores(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{candles: sampleCandles}
	cached := NewCached(src, db, 60*time.Second)

	key := cacheKey("BTCUSDT", types.IntervalDay, 90)
	raw, err := json.Marshal(sampleCandles)
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, raw, 60*time.Second).SetVal("OK")

	out, err := cached.Load(context.Background(), "BTCUSDT", types.IntervalDay, 90)
	require.NoError(t, err)
	assert.Equal(t, sampleCandles, out)
	assert.Equal(t, 1, src.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedHitSkipsUpstream(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{err: errors.New("should not be called")}
	cached := NewCached(src, db, 60*time.Second)

	key := cacheKey("ETHUSDT", types.IntervalWeek, 30)
	raw, err := json.Marshal(sampleCandles)
	require.NoError(t, err)
	mock.ExpectGet(key).SetVal(string(raw))

	out, err := cached.Load(context.Background(), "ETHUSDT", types.IntervalWeek, 30)
	require.NoError(t, err)
	assert.Equal(t, sampleCandles, out)
	assert.Equal(t, 0, src.calls)
}

func TestCachedRedisDownFallsThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	src := &stubSource{candles: sampleCandles}
	cached := NewCached(src, db, 60*time.Second)

	key := cacheKey("BTCUSDT", types.IntervalDay, 90)
	raw, err := json.Marshal(sampleCandles)
	require.NoError(t, err)

	mock.ExpectGet(key).SetErr(errors.New("redis down"))
	mock.ExpectSet(key, raw, 60*time.Second).SetErr(errors.New("redis down"))

	out, err := cached.Load(context.Background(), "BTCUSDT", types.IntervalDay, 90)
	require.NoError(t, err)
	assert.Equal(t, sampleCandles, out)
	assert.Equal(t, 1, src.calls)
}

func TestCachedUpstreamErrorPropagates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	upstreamErr := &types.UpstreamFetchError{Status: 500, Body: "boom"}
	src := &stubSource{err: upstreamErr}
	cached := NewCached(src, db, 60*time.Second)

	mock.ExpectGet(cacheKey("BTCUSDT", types.IntervalDay, 90)).RedisNil()

	_, err := cached.Load(context.Background(), "BTCUSDT", types.IntervalDay, 90)
	var uf *types.UpstreamFetchError
	require.ErrorAs(t, err, &uf)
}
