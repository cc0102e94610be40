package predictor

import (
	"encoding/json"
	"fmt"

	"marketlens/internal/types"
)

// resolveSingle validates a single-mode reply and resolves the forecast.
// Required fields: targetPrice, direction, confidence; predictedValues are
// mapped onto timestamps spaced one period apart after the last candle.
func resolveSingle(content, symbol string, interval types.Interval, last types.Candle) (*types.Forecast, error) {
	var raw struct {
		TargetPrice     *float64  `json:"targetPrice"`
		Direction       string    `json:"direction"`
		Confidence      string    `json:"confidence"`
		Reasoning       string    `json:"reasoning"`
		PredictedValues []float64 `json:"predictedValues"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &types.MalformedModelOutputError{Reason: fmt.Sprintf("parse: %v", err), Raw: content}
	}

	if raw.TargetPrice == nil {
		return nil, &types.MalformedModelOutputError{Reason: "targetPrice missing", Raw: content}
	}
	direction := types.Direction(raw.Direction)
	if !direction.Valid() {
		return nil, &types.MalformedModelOutputError{Reason: fmt.Sprintf("direction %q out of domain", raw.Direction), Raw: content}
	}
	confidence := types.Confidence(raw.Confidence)
	if !confidence.Valid() {
		return nil, &types.MalformedModelOutputError{Reason: fmt.Sprintf("confidence %q out of domain", raw.Confidence), Raw: content}
	}

	return &types.Forecast{
		Symbol:        symbol,
		Interval:      interval,
		TargetPrice:   *raw.TargetPrice,
		Direction:     direction,
		Confidence:    confidence,
		Reasoning:     raw.Reasoning,
		PredictedPath: buildPath(raw.PredictedValues, last.Time, interval),
		CurrentPrice:  last.Close,
	}, nil
}

// resolveDual validates a dual-mode (monthly) reply and arbitrates between
// the two sides by confidence rank, ties favoring buy. A missing side is
// substituted with the current close at low confidence — a deliberate
// degrade-gracefully policy, surfaced through the forecast warnings.
func resolveDual(content, symbol string, interval types.Interval, last types.Candle) (*types.Forecast, error) {
	var raw struct {
		BuySuggestion   *rawSuggestion `json:"buySuggestion"`
		SellSuggestion  *rawSuggestion `json:"sellSuggestion"`
		Reasoning       string         `json:"reasoning"`
		PredictedValues []float64      `json:"predictedValues"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &types.MalformedModelOutputError{Reason: fmt.Sprintf("parse: %v", err), Raw: content}
	}

	var warnings []string
	buy, warn, err := normalizeSuggestion(raw.BuySuggestion, types.SideBuy, last.Close, content)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, warn...)
	sell, warn, err := normalizeSuggestion(raw.SellSuggestion, types.SideSell, last.Close, content)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, warn...)

	// Ties resolve to buy.
	recommended, alternative := buy, sell
	if sell.Confidence.Rank() > buy.Confidence.Rank() {
		recommended, alternative = sell, buy
	}

	direction := types.DirectionUp
	if recommended.Side == types.SideSell {
		direction = types.DirectionDown
	}

	return &types.Forecast{
		Symbol:        symbol,
		Interval:      interval,
		TargetPrice:   recommended.TargetPrice,
		Direction:     direction,
		Confidence:    recommended.Confidence,
		Reasoning:     raw.Reasoning,
		Recommended:   &recommended,
		Alternative:   &alternative,
		PredictedPath: buildPath(raw.PredictedValues, last.Time, interval),
		CurrentPrice:  last.Close,
		Warnings:      warnings,
	}, nil
}

type rawSuggestion struct {
	TargetPrice *float64 `json:"targetPrice"`
	Confidence  string   `json:"confidence"`
}

func normalizeSuggestion(raw *rawSuggestion, side types.Side, currentClose float64, content string) (types.Suggestion, []string, error) {
	if raw == nil || raw.TargetPrice == nil {
		return types.Suggestion{
				Side:        side,
				TargetPrice: currentClose,
				Confidence:  types.ConfidenceLow,
			}, []string{fmt.Sprintf("%sSuggestion missing; substituted current price at low confidence", side)},
			nil
	}

	confidence := types.Confidence(raw.Confidence)
	if !confidence.Valid() {
		return types.Suggestion{}, nil, &types.MalformedModelOutputError{
			Reason: fmt.Sprintf("%sSuggestion confidence %q out of domain", side, raw.Confidence),
			Raw:    content,
		}
	}
	return types.Suggestion{Side: side, TargetPrice: *raw.TargetPrice, Confidence: confidence}, nil, nil
}

// buildPath maps predicted values onto timestamps strictly increasing by one
// period length each step, starting one period after the last candle.
func buildPath(values []float64, lastTime int64, interval types.Interval) []types.PricePoint {
	period := interval.Seconds()
	path := make([]types.PricePoint, 0, len(values))
	for i, v := range values {
		path = append(path, types.PricePoint{
			Time:  lastTime + int64(i+1)*period,
			Value: v,
		})
	}
	return path
}
