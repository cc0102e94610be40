package ta

import (
	"math"

	"marketlens/internal/types"
)

// Config selects the indicator windows computed per snapshot.
type Config struct {
	EMAPeriods  []int
	FibLookback int
}

// DefaultConfig matches the windows used by the prediction pipeline.
func DefaultConfig() Config {
	return Config{EMAPeriods: []int{9, 21, 50}, FibLookback: 12}
}

// EMA computes the exponential moving average series for the closes. The
// seed at index period-1 is the simple average of the first period closes;
// indices before the seed are NaN. A series shorter than the period is
// entirely undefined and reported as an error, never as zeros.
func EMA(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, &types.InsufficientHistoryError{Need: 1, Have: len(closes)}
	}
	if len(closes) < period {
		return nil, &types.InsufficientHistoryError{Need: period, Have: len(closes)}
	}

	out := make([]float64, len(closes))
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += closes[i]
	}
	out[period-1] = seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(closes); i++ {
		out[i] = closes[i]*k + out[i-1]*(1-k)
	}
	return out, nil
}

// Fibonacci computes retracement levels over the last lookback candles:
// level(p) = high - range*p for p in {23.6, 38.2, 50, 61.8, 78.6}%.
func Fibonacci(candles []types.Candle, lookback int) (types.FibLevels, error) {
	if lookback <= 0 || len(candles) < lookback {
		return types.FibLevels{}, &types.InsufficientHistoryError{Need: lookback, Have: len(candles)}
	}

	window := candles[len(candles)-lookback:]
	high := window[0].High
	low := window[0].Low
	for _, c := range window[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}

	r := high - low
	return types.FibLevels{
		High: high,
		Low:  low,
		L236: high - r*0.236,
		L382: high - r*0.382,
		L500: high - r*0.5,
		L618: high - r*0.618,
		L786: high - r*0.786,
	}, nil
}

// Snapshot derives the full indicator set from one candle series. EMA
// periods longer than the series are omitted from the result rather than
// padded; too little history for the fib window fails the whole snapshot.
// The engine holds no state between calls.
func Snapshot(candles []types.Candle, cfg Config) (types.IndicatorSet, error) {
	fib, err := Fibonacci(candles, cfg.FibLookback)
	if err != nil {
		return types.IndicatorSet{}, err
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	emas := make(map[int][]float64, len(cfg.EMAPeriods))
	for _, period := range cfg.EMAPeriods {
		series, err := EMA(closes, period)
		if err != nil {
			continue // undefined for this series length
		}
		emas[period] = series
	}

	return types.IndicatorSet{EMA: emas, Fib: fib}, nil
}
