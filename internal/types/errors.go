package types

import "fmt"

// InvalidSymbolError rejects symbols outside the tracked allow-list. Raised
// before any network I/O.
type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q", e.Symbol)
}

// UpstreamFetchError means the candle source returned a non-success status
// or a payload that could not be decoded.
type UpstreamFetchError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream fetch failed: http %d: %s", e.Status, e.Body)
}

func (e *UpstreamFetchError) Unwrap() error { return e.Err }

// ConfigurationError means a required credential or setting is missing.
// Surfaced before any network call is attempted.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s missing", e.Missing)
}

// ModelCallError means the reasoning model call failed in transport or
// returned a non-success status. Status and Body carry the upstream
// diagnostics when available.
type ModelCallError struct {
	Status int
	Body   string
	Err    error
}

func (e *ModelCallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model call failed: %v", e.Err)
	}
	return fmt.Sprintf("model call failed: http %d: %s", e.Status, e.Body)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// MalformedModelOutputError means the model's structured output could not be
// parsed, or a required field was absent or out of domain.
type MalformedModelOutputError struct {
	Reason string
	Raw    string
}

func (e *MalformedModelOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Reason)
}

// InsufficientHistoryError means the candle series is too short for the
// requested indicator window.
type InsufficientHistoryError struct {
	Need, Have int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: need %d candles, have %d", e.Need, e.Have)
}
