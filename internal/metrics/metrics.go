// Package metrics registers the Prometheus instruments shared across the
// pipeline. Counters are registered once at init and are safe for
// concurrent use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksReceived counts live-feed tick messages, labelled by symbol.
	TicksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "stream",
		Name:      "ticks_received_total",
		Help:      "Live ticker messages received, per symbol.",
	}, []string{"symbol"})

	// Reconnects counts stream reconnection attempts.
	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "stream",
		Name:      "reconnects_total",
		Help:      "Reconnection attempts after a dropped live-feed connection.",
	})

	// CandleFetches counts upstream candle loads by result.
	CandleFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "candles",
		Name:      "fetches_total",
		Help:      "Candle source loads, by result.",
	}, []string{"result"})

	// Forecasts counts prediction invocations by outcome.
	Forecasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketlens",
		Subsystem: "predictor",
		Name:      "forecasts_total",
		Help:      "Prediction orchestrations, by outcome.",
	}, []string{"outcome"})
)
