// Package journal defines the caller-owned trade journal consumed as model
// context. Entries are validated at the boundary; the pipeline never stores
// or mutates them.
package journal

import (
	"fmt"
	"strings"
	"time"

	"marketlens/internal/types"
)

// Entry is one past trade with its realized outcome. CreatedAt is unix
// milliseconds; zero means unknown. PnL is nil when unrealized.
type Entry struct {
	Price     float64    `json:"price"`
	Side      types.Side `json:"side"`
	Amount    float64    `json:"amount,omitempty"`
	CreatedAt int64      `json:"createdAt,omitempty"`
	Outcome   string     `json:"outcome,omitempty"` // won, lost, or empty
	PnL       *float64   `json:"pnl,omitempty"`
}

// ValidationError points at the first malformed entry.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("journal entry %d: %s", e.Index, e.Reason)
}

// Validate rejects malformed entries instead of filtering them silently.
func Validate(entries []Entry) error {
	for i, e := range entries {
		if e.Side != types.SideBuy && e.Side != types.SideSell {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("invalid side %q", e.Side)}
		}
		if e.Price <= 0 {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("price must be positive, got %g", e.Price)}
		}
		if e.Amount < 0 {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("amount must not be negative, got %g", e.Amount)}
		}
		if e.Outcome != "" && e.Outcome != "won" && e.Outcome != "lost" {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("invalid outcome %q", e.Outcome)}
		}
	}
	return nil
}

// Summarize renders the journal section of the model prompt, one line per
// entry. Returns the empty string for an empty journal so the caller can
// omit the section entirely.
func Summarize(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "USER TRADE HISTORY (learn from these moves to sharpen the analysis):\n")
	fmt.Fprintf(&b, "The user has %d recorded entries. Each one includes when it was made and its result:\n", len(entries))
	for i, e := range entries {
		b.WriteString(summarizeEntry(i+1, e))
		b.WriteByte('\n')
	}
	b.WriteString("Weigh these moves in the prediction: patterns where the user won or lost, recurring price zones, and similar signals.")
	return b.String()
}

func summarizeEntry(n int, e Entry) string {
	action := "Bought (long)"
	if e.Side == types.SideSell {
		action = "Sold (short)"
	}

	when := "unknown date"
	if e.CreatedAt > 0 {
		when = time.UnixMilli(e.CreatedAt).UTC().Format("2006-01-02 15:04")
	}

	qty := ""
	if e.Amount > 0 {
		qty = fmt.Sprintf(", qty %g", e.Amount)
	}

	result := "neutral"
	switch e.Outcome {
	case "won":
		result = "WON"
	case "lost":
		result = "LOST"
	}

	pnl := ""
	if e.PnL != nil {
		pnl = fmt.Sprintf(", P&L %+.2f USDT", *e.PnL)
	}

	return fmt.Sprintf("- Entry %d: %s at $%g%s on %s. Result: %s%s", n, action, e.Price, qty, when, result, pnl)
}
