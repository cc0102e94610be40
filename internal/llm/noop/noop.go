// Package noop provides a forecaster that answers a flat, low-confidence
// sideways outlook without calling any external model. Used when no provider
// is configured and in tests.
package noop

import (
	"context"
	"encoding/json"

	"marketlens/internal/interfaces"
)

type Forecaster struct{}

var _ interfaces.Forecaster = (*Forecaster)(nil)

func NewForecaster() *Forecaster { return &Forecaster{} }

func (f *Forecaster) Ready() error { return nil }

func (f *Forecaster) Complete(_ context.Context, _ string) (string, error) {
	out := map[string]any{
		"targetPrice":     0,
		"direction":       "sideways",
		"confidence":      "low",
		"reasoning":       "noop forecaster: no model configured",
		"predictedValues": []float64{},
	}
	b, _ := json.Marshal(out)
	return string(b), nil
}
