package types

import "math"

// Candle is one OHLC bucket. Time is the candle open in unix seconds.
type Candle struct {
	Time                        int64
	Open, High, Low, Close, Vol float64
}

// Interval is a chart cadence in Binance notation.
type Interval string

const (
	IntervalDay   Interval = "1d"
	IntervalWeek  Interval = "1w"
	IntervalMonth Interval = "1M"
)

const (
	secondsPerDay   = 86400
	secondsPerWeek  = 604800
	secondsPerMonth = 2592000 // ~30 days
)

// Seconds returns the period length of the interval. Unknown intervals
// fall back to the daily period.
func (iv Interval) Seconds() int64 {
	switch iv {
	case IntervalWeek:
		return secondsPerWeek
	case IntervalMonth:
		return secondsPerMonth
	default:
		return secondsPerDay
	}
}

func (iv Interval) Valid() bool {
	return iv == IntervalDay || iv == IntervalWeek || iv == IntervalMonth
}

// ParseInterval accepts both Binance notation and plain cadence names.
// An empty string means the daily cadence.
func ParseInterval(s string) (Interval, bool) {
	switch s {
	case "", "1d", "day":
		return IntervalDay, true
	case "1w", "week":
		return IntervalWeek, true
	case "1M", "month":
		return IntervalMonth, true
	}
	return "", false
}

// Label returns a human cadence name for prompts.
func (iv Interval) Label() string {
	switch iv {
	case IntervalWeek:
		return "weekly"
	case IntervalMonth:
		return "monthly"
	default:
		return "daily"
	}
}

type Direction string

const (
	DirectionUp       Direction = "up"
	DirectionDown     Direction = "down"
	DirectionSideways Direction = "sideways"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown || d == DirectionSideways
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

func (c Confidence) Valid() bool {
	return c == ConfidenceLow || c == ConfidenceMedium || c == ConfidenceHigh
}

// Rank maps confidence onto the ordinal scale used to arbitrate between
// competing suggestions: low=1, medium=2, high=3. Unknown values rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	default:
		return 0
	}
}

// FibLevels are Fibonacci retracement prices over a lookback window.
type FibLevels struct {
	High float64 `json:"high"`
	Low  float64 `json:"low"`
	L236 float64 `json:"level236"`
	L382 float64 `json:"level382"`
	L500 float64 `json:"level500"`
	L618 float64 `json:"level618"`
	L786 float64 `json:"level786"`
}

// IndicatorSet is a read-only snapshot derived from one candle series.
// EMA holds a full series per period; indices before the seed are NaN.
// A period absent from the map had too little history and is undefined.
type IndicatorSet struct {
	EMA map[int][]float64
	Fib FibLevels
}

// LastEMA returns the latest EMA value for the period, or NaN when the
// period is undefined for the underlying series.
func (s IndicatorSet) LastEMA(period int) float64 {
	series, ok := s.EMA[period]
	if !ok || len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// PricePoint is one point of a predicted trajectory.
type PricePoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Suggestion is one side's price target with its confidence.
type Suggestion struct {
	Side        Side       `json:"side"`
	TargetPrice float64    `json:"targetPrice"`
	Confidence  Confidence `json:"confidence"`
}

// Forecast is the immutable result of one successful prediction. A new
// forecast supersedes the previous one; it is never mutated in place.
type Forecast struct {
	Symbol      string     `json:"symbol"`
	Interval    Interval   `json:"interval"`
	TargetPrice float64    `json:"targetPrice"`
	Direction   Direction  `json:"direction"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning"`

	// Dual-mode only (monthly cadence): the confidence-ranked winner and
	// the losing side. Nil in single-mode.
	Recommended *Suggestion `json:"recommended,omitempty"`
	Alternative *Suggestion `json:"alternative,omitempty"`

	PredictedPath []PricePoint `json:"predictedPath"`
	CurrentPrice  float64      `json:"currentPrice"`

	// Warnings surface the degrade-gracefully substitutions applied while
	// validating the model output.
	Warnings []string `json:"warnings,omitempty"`
}

// AlertTarget returns the target price and confidence the alert evaluator
// should track: the recommended side in dual-mode, the top-level forecast
// otherwise.
func (f *Forecast) AlertTarget() (float64, Confidence) {
	if f.Recommended != nil {
		return f.Recommended.TargetPrice, f.Recommended.Confidence
	}
	return f.TargetPrice, f.Confidence
}

// PriceSnapshot is a point-in-time view of the live feed for one symbol.
type PriceSnapshot struct {
	Price     float64 `json:"price"`
	Connected bool    `json:"connected"`
	Error     string  `json:"error,omitempty"`
}
