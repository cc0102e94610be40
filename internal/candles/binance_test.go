package candles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketlens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{BaseURL: baseURL, Symbols: []string{"BTCUSDT", "ETHUSDT"}}
}

func TestLoadRejectsUnknownSymbolBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	src := NewBinance(testConfig(server.URL), server.Client())
	_, err := src.Load(context.Background(), "DOGEUSDT", types.IntervalDay, 90)

	var is *types.InvalidSymbolError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, "DOGEUSDT", is.Symbol)
	assert.False(t, called, "allow-list rejection must happen before any network call")
}

func TestLoadClampsLimit(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	src := NewBinance(testConfig(server.URL), server.Client())

	_, err := src.Load(context.Background(), "BTCUSDT", types.IntervalDay, 9000)
	require.NoError(t, err)
	assert.Equal(t, "500", gotLimit)

	_, err = src.Load(context.Background(), "BTCUSDT", types.IntervalDay, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", gotLimit)
}

func TestLoadConvertsRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			[1700000000000, "64000.5", "66000", "63000", "65000", "123.4", 1700086399999, "0", 0, "0", "0", "0"],
			[1700086400000, "65000", "67000", "64500", "66500", "98.7", 1700172799999, "0", 0, "0", "0", "0"]
		]`))
	}))
	defer server.Close()

	src := NewBinance(testConfig(server.URL), server.Client())
	out, err := src.Load(context.Background(), "BTCUSDT", types.IntervalDay, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(1700000000), out[0].Time)
	assert.Equal(t, 64000.5, out[0].Open)
	assert.Equal(t, 66000.0, out[0].High)
	assert.Equal(t, 63000.0, out[0].Low)
	assert.Equal(t, 65000.0, out[0].Close)
	assert.Equal(t, 123.4, out[0].Vol)
	assert.Equal(t, int64(1700086400), out[1].Time)
}

func TestLoadUpstreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "binance down", http.StatusInternalServerError)
	}))
	defer server.Close()

	src := NewBinance(testConfig(server.URL), server.Client())
	_, err := src.Load(context.Background(), "BTCUSDT", types.IntervalDay, 90)

	var uf *types.UpstreamFetchError
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, http.StatusInternalServerError, uf.Status)
	assert.Contains(t, uf.Body, "binance down")
}

func TestLoadMalformedPayload(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not an array", `{"oops": true}`},
		{"short row", `[[1700000000000, "64000"]]`},
		{"non-numeric price", `[[1700000000000, "abc", "1", "1", "1", "1"]]`},
		{"duplicate open time", `[
			[1700000000000, "1", "1", "1", "1", "1"],
			[1700000000000, "1", "1", "1", "1", "1"]
		]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			src := NewBinance(testConfig(server.URL), server.Client())
			_, err := src.Load(context.Background(), "BTCUSDT", types.IntervalDay, 5)

			var uf *types.UpstreamFetchError
			require.ErrorAs(t, err, &uf)
		})
	}
}
