// Package llmobs wraps a Forecaster with logging and tracing middleware.
package llmobs

import (
	"context"

	"marketlens/internal/interfaces"
	"marketlens/internal/logger"
	"marketlens/internal/trace"
)

type observableForecaster struct {
	next interfaces.Forecaster
}

var _ interfaces.Forecaster = (*observableForecaster)(nil)

// Wrap adds observability middleware around a forecaster.
func Wrap(next interfaces.Forecaster) interfaces.Forecaster {
	return &observableForecaster{next: next}
}

func (of *observableForecaster) Ready() error {
	return of.next.Ready()
}

func (of *observableForecaster) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()

	// Skip(1) so the log record points at the orchestrator, not this wrapper.
	logger.DebugSkip(ctx, 1, "Requesting model completion", "prompt_chars", len(prompt))

	content, err := of.next.Complete(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Model completion failed", err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Model completion received", "content_chars", len(content))
	return content, nil
}
