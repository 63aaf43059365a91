package history

import (
	"context"
	"log/slog"

	"github.com/mattjoyce/breakdown/internal/options"
	"github.com/mattjoyce/breakdown/internal/pipeline"
)

// Recorder persists entries. *Store implements it.
type Recorder interface {
	Record(ctx context.Context, e Entry) (string, error)
}

// Capture records one finished run. A nil rec is a no-op. Recording
// failures are logged and never change the outcome of the run.
func Capture(ctx context.Context, rec Recorder, logger *slog.Logger, surface Surface, opts options.Options, args []string, res *pipeline.Result, runErr error) {
	if rec == nil {
		return
	}
	e := FromResult(surface, opts, args, res, runErr)
	if _, err := rec.Record(context.WithoutCancel(ctx), e); err != nil && logger != nil {
		logger.Warn("failed to record run history", "run_id", e.ID, "error", err)
	}
}
