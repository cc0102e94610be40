// Package predictor orchestrates a prediction: it assembles model context
// from candle history and indicators, issues one call to the reasoning
// model, validates the structured reply, and resolves the final forecast.
package predictor

import (
	"context"

	"marketlens/internal/foreclog"
	"marketlens/internal/interfaces"
	"marketlens/internal/journal"
	"marketlens/internal/logger"
	"marketlens/internal/metrics"
	"marketlens/internal/store"
	"marketlens/internal/ta"
	"marketlens/internal/trace"
	"marketlens/internal/types"
)

const historyLimit = 90

type Service struct {
	cfg      *store.Config
	candles  interfaces.CandleSource
	model    interfaces.Forecaster
	registry *Registry
}

func New(cfg *store.Config, candles interfaces.CandleSource, model interfaces.Forecaster, registry *Registry) *Service {
	return &Service{cfg: cfg, candles: candles, model: model, registry: registry}
}

// Predict runs one orchestration for the symbol. A failure is terminal for
// this invocation and never clears a previously registered forecast; the
// caller retries by calling Predict again. The context cancels the
// in-flight model call.
func (s *Service) Predict(ctx context.Context, symbol string, interval types.Interval, entries []journal.Entry) (*types.Forecast, error) {
	ctx, span := trace.StartSpan(ctx, "predictor.Predict")
	defer span.End()

	f, err := s.predict(ctx, symbol, interval, entries)
	if err != nil {
		metrics.Forecasts.WithLabelValues("failed").Inc()
		logger.ErrorWithErr(ctx, "Prediction failed", err, "symbol", symbol, "interval", string(interval))
		return nil, err
	}

	metrics.Forecasts.WithLabelValues("resolved").Inc()
	logger.Forecast(ctx, f.Symbol, string(f.Interval), string(f.Direction), string(f.Confidence), f.TargetPrice,
		"current_price", f.CurrentPrice,
		"warnings", len(f.Warnings),
	)
	return f, nil
}

func (s *Service) predict(ctx context.Context, symbol string, interval types.Interval, entries []journal.Entry) (*types.Forecast, error) {
	// Credential check comes first: a missing key is a configuration
	// error, surfaced before any network call, candle fetch included.
	if err := s.model.Ready(); err != nil {
		return nil, err
	}
	if err := journal.Validate(entries); err != nil {
		return nil, err
	}

	series, err := s.candles.Load(ctx, symbol, interval, historyLimit)
	if err != nil {
		return nil, err
	}

	taCfg := ta.Config{
		EMAPeriods:  s.cfg.Indicators.EMAPeriods,
		FibLookback: s.cfg.Indicators.FibLookback,
	}
	indicators, err := ta.Snapshot(series, taCfg)
	if err != nil {
		return nil, err
	}

	last := series[len(series)-1]
	dual := interval == types.IntervalMonth
	prompt := buildPrompt(promptInput{
		Symbol:     symbol,
		Interval:   interval,
		Candles:    series,
		Last:       last,
		Indicators: indicators,
		Journal:    journal.Summarize(entries),
		Dual:       dual,
	})

	// Exactly one model request. Failures are terminal, no retry here.
	content, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var f *types.Forecast
	if dual {
		f, err = resolveDual(content, symbol, interval, last)
	} else {
		f, err = resolveSingle(content, symbol, interval, last)
	}
	if err != nil {
		return nil, err
	}

	if s.registry != nil {
		s.registry.Put(symbol, f)
	}
	if err := foreclog.Append(foreclog.EntryFromForecast(f)); err != nil {
		logger.Warn(ctx, "Forecast audit log append failed", "error", err)
	}
	return f, nil
}
