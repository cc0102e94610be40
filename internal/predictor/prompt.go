package predictor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"marketlens/internal/types"
)

// closesInContext bounds how many trailing closes the model sees.
const closesInContext = 30

type promptInput struct {
	Symbol     string
	Interval   types.Interval
	Candles    []types.Candle
	Last       types.Candle
	Indicators types.IndicatorSet
	Journal    string
	Dual       bool
}

func assetLabel(symbol string) string {
	switch symbol {
	case "BTCUSDT":
		return "Bitcoin (BTC)"
	case "ETHUSDT":
		return "Ethereum (ETH)"
	default:
		return symbol
	}
}

// buildPrompt assembles the model context: trailing closes, the current
// candle's range, the indicator snapshot, and the journal summary when the
// journal is non-empty. The journal section is omitted entirely otherwise.
func buildPrompt(in promptInput) string {
	closes := in.Candles
	if len(closes) > closesInContext {
		closes = closes[len(closes)-closesInContext:]
	}
	parts := make([]string, 0, len(closes))
	for _, c := range closes {
		parts = append(parts, strconv.FormatFloat(c.Close, 'f', -1, 64))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a cryptocurrency technical analyst. Analyze the following %s closing price history for %s.\n",
		in.Interval.Label(), assetLabel(in.Symbol))
	fmt.Fprintf(&b, "Last %d closes (oldest to newest): %s\n", len(parts), strings.Join(parts, ", "))
	fmt.Fprintf(&b, "Current price: %g\n", in.Last.Close)
	fmt.Fprintf(&b, "Latest period range: open %g, high %g, low %g\n", in.Last.Open, in.Last.High, in.Last.Low)

	b.WriteString(indicatorSection(in.Indicators))

	if in.Journal != "" {
		b.WriteString("\n")
		b.WriteString(in.Journal)
		b.WriteString("\n")
	}

	if in.Dual {
		b.WriteString(dualSchema)
	} else {
		b.WriteString(singleSchema)
	}

	if in.Journal != "" {
		b.WriteString("\nBriefly mention in the reasoning how the user's trade history influences the prediction.")
	}
	return b.String()
}

func indicatorSection(s types.IndicatorSet) string {
	var b strings.Builder
	b.WriteString("Technical indicators:\n")

	for _, period := range []int{9, 21, 50} {
		v := s.LastEMA(period)
		if math.IsNaN(v) {
			continue
		}
		fmt.Fprintf(&b, "- EMA(%d): %.2f\n", period, v)
	}

	fib := s.Fib
	fmt.Fprintf(&b, "- Fibonacci retracement (window high %.2f, low %.2f): 23.6%%=%.2f, 38.2%%=%.2f, 50%%=%.2f, 61.8%%=%.2f, 78.6%%=%.2f\n",
		fib.High, fib.Low, fib.L236, fib.L382, fib.L500, fib.L618, fib.L786)
	return b.String()
}

const singleSchema = `
Respond ONLY with a valid JSON object, no extra text, with this exact structure:
{
  "targetPrice": <number: target price for the next period>,
  "direction": "up" | "down" | "sideways",
  "confidence": "low" | "medium" | "high",
  "reasoning": "<brief explanation, two sentences at most>",
  "predictedValues": [<v1>, <v2>, <v3>, <v4>, <v5>]
}

predictedValues are 5 estimated prices for the next 5 periods (to draw a trend line).
targetPrice is the most likely short-term price point. Be concise and ground the answer in technical patterns.`

const dualSchema = `
Respond ONLY with a valid JSON object, no extra text, with this exact structure:
{
  "buySuggestion": { "targetPrice": <number>, "confidence": "low" | "medium" | "high" },
  "sellSuggestion": { "targetPrice": <number>, "confidence": "low" | "medium" | "high" },
  "reasoning": "<brief explanation, two sentences at most>",
  "predictedValues": [<v1>, <v2>, <v3>, <v4>, <v5>]
}

buySuggestion is the best long entry target for the coming month, sellSuggestion the best short entry target.
predictedValues are 5 estimated prices for the next 5 periods (to draw a trend line).
Be concise and ground the answer in technical patterns.`
