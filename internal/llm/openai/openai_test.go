package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketlens/internal/store"
	"marketlens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_API_ENDPOINT", endpoint)
	cfg, err := store.LoadConfig("no-such-file.yaml")
	require.NoError(t, err)
	return NewClient(cfg)
}

func TestReadyWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := store.LoadConfig("no-such-file.yaml")
	require.NoError(t, err)

	c := NewClient(cfg)
	var ce *types.ConfigurationError
	require.ErrorAs(t, c.Ready(), &ce)
	assert.Equal(t, "OPENAI_API_KEY", ce.Missing)
}

func TestCompleteSendsJSONObjectRequest(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"direction\":\"up\"}"}}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	content, err := c.Complete(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, `{"direction":"up"}`, content)

	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.InDelta(t, 0.3, gotBody["temperature"], 1e-6)
	rf, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", rf["type"])
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	_, err := c.Complete(context.Background(), "prompt")

	var mc *types.ModelCallError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, http.StatusTooManyRequests, mc.Status)
	assert.Contains(t, mc.Body, "rate limited")
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	_, err := c.Complete(context.Background(), "prompt")

	var mc *types.ModelCallError
	require.ErrorAs(t, err, &mc)
}

func TestCompleteCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c := testClient(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Complete(ctx, "prompt")
	var mc *types.ModelCallError
	require.ErrorAs(t, err, &mc)
	assert.ErrorIs(t, err, context.Canceled)
}
