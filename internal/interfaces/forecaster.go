package interfaces

import "context"

// Forecaster issues one prompt to the external reasoning model and returns
// the raw structured content of its reply. Validation of the content is the
// orchestrator's job, not the transport's.
type Forecaster interface {
	// Ready reports whether the model credential is configured. A non-nil
	// error means any prediction must fail before network I/O.
	Ready() error

	// Complete sends the prompt and returns the message content verbatim.
	Complete(ctx context.Context, prompt string) (string, error)
}
