// Package alert decides when a forecast is close enough to the live
// market to be worth surfacing.
package alert

import (
	"marketlens/internal/interfaces"
	"marketlens/internal/logger"
	"marketlens/internal/predictor"
	"marketlens/internal/types"

	"context"
	"math"
)

// DefaultThreshold is the relative distance between the predicted
// target and the live price below which an alert fires.
const DefaultThreshold = 0.03

// Evaluate reports whether a single target/confidence pair qualifies
// as an alert against the live price. Only high-confidence forecasts
// ever alert, and a non-positive live price never does.
func Evaluate(target float64, confidence types.Confidence, livePrice, threshold float64) bool {
	if confidence != types.ConfidenceHigh {
		return false
	}
	if livePrice <= 0 {
		return false
	}
	return math.Abs(target-livePrice)/livePrice <= threshold
}

// Status is the answer to an alert query for one symbol.
type Status struct {
	Symbol      string           `json:"symbol"`
	Alert       bool             `json:"alert"`
	TargetPrice float64          `json:"targetPrice,omitempty"`
	Confidence  types.Confidence `json:"confidence,omitempty"`
	LivePrice   float64          `json:"livePrice"`
	Connected   bool             `json:"connected"`
}

// Service joins the latest stored forecast for a symbol with the live
// price feed.
type Service struct {
	feed      interfaces.PriceFeed
	registry  *predictor.Registry
	threshold float64
}

func New(feed interfaces.PriceFeed, registry *predictor.Registry, threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{feed: feed, registry: registry, threshold: threshold}
}

// Check evaluates the alert condition for symbol. With no stored
// forecast the status is quiet rather than an error.
func (s *Service) Check(ctx context.Context, symbol string) Status {
	snap := s.feed.Snapshot(symbol)
	st := Status{Symbol: symbol, LivePrice: snap.Price, Connected: snap.Connected}

	fc := s.registry.Get(symbol)
	if fc == nil {
		return st
	}

	target, confidence := fc.AlertTarget()
	st.TargetPrice = target
	st.Confidence = confidence
	st.Alert = Evaluate(target, confidence, snap.Price, s.threshold)
	if st.Alert {
		logger.Info(ctx, "alert condition met",
			"symbol", symbol, "target", target, "live", snap.Price)
	}
	return st
}
