package alert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketlens/internal/predictor"
	"marketlens/internal/types"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name       string
		target     float64
		confidence types.Confidence
		live       float64
		want       bool
	}{
		{"high within threshold", 102, types.ConfidenceHigh, 100, true},
		{"high at exact boundary", 103, types.ConfidenceHigh, 100, true},
		{"high outside threshold", 104, types.ConfidenceHigh, 100, false},
		{"target below live within threshold", 97.5, types.ConfidenceHigh, 100, true},
		{"medium never alerts", 100, types.ConfidenceMedium, 100, false},
		{"low never alerts", 100, types.ConfidenceLow, 100, false},
		{"zero live price", 100, types.ConfidenceHigh, 0, false},
		{"negative live price", 100, types.ConfidenceHigh, -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.target, tc.confidence, tc.live, DefaultThreshold)
			assert.Equal(t, tc.want, got)
		})
	}
}

type stubFeed struct {
	snap types.PriceSnapshot
}

func (s *stubFeed) Snapshot(string) types.PriceSnapshot { return s.snap }

func TestCheckNoForecastIsQuiet(t *testing.T) {
	feed := &stubFeed{snap: types.PriceSnapshot{Price: 65000, Connected: true}}
	svc := New(feed, predictor.NewRegistry(), DefaultThreshold)

	st := svc.Check(context.Background(), "BTCUSDT")
	assert.False(t, st.Alert)
	assert.Equal(t, 65000.0, st.LivePrice)
	assert.True(t, st.Connected)
	assert.Zero(t, st.TargetPrice)
}

func TestCheckSingleModeForecast(t *testing.T) {
	feed := &stubFeed{snap: types.PriceSnapshot{Price: 100, Connected: true}}
	reg := predictor.NewRegistry()
	reg.Put("BTCUSDT", &types.Forecast{
		Symbol:      "BTCUSDT",
		TargetPrice: 102,
		Confidence:  types.ConfidenceHigh,
	})
	svc := New(feed, reg, DefaultThreshold)

	st := svc.Check(context.Background(), "BTCUSDT")
	assert.True(t, st.Alert)
	assert.Equal(t, 102.0, st.TargetPrice)
	assert.Equal(t, types.ConfidenceHigh, st.Confidence)
}

func TestCheckDualModeUsesRecommendedSuggestion(t *testing.T) {
	feed := &stubFeed{snap: types.PriceSnapshot{Price: 100, Connected: true}}
	reg := predictor.NewRegistry()
	reg.Put("BTCUSDT", &types.Forecast{
		Symbol:      "BTCUSDT",
		TargetPrice: 500, // stale top-level value must not be used
		Confidence:  types.ConfidenceLow,
		Recommended: &types.Suggestion{
			Side:        types.SideSell,
			TargetPrice: 99,
			Confidence:  types.ConfidenceHigh,
		},
	})
	svc := New(feed, reg, DefaultThreshold)

	st := svc.Check(context.Background(), "BTCUSDT")
	assert.True(t, st.Alert)
	assert.Equal(t, 99.0, st.TargetPrice)
}

func TestCheckDisconnectedFeed(t *testing.T) {
	feed := &stubFeed{snap: types.PriceSnapshot{Price: 0, Connected: false, Error: "connection refused"}}
	reg := predictor.NewRegistry()
	reg.Put("BTCUSDT", &types.Forecast{
		Symbol:      "BTCUSDT",
		TargetPrice: 100,
		Confidence:  types.ConfidenceHigh,
	})
	svc := New(feed, reg, DefaultThreshold)

	st := svc.Check(context.Background(), "BTCUSDT")
	assert.False(t, st.Alert, "no live price, no alert")
	assert.False(t, st.Connected)
}
