package pipeline

import (
	"context"
	"errors"
	"time"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

// Step identifies one pipeline stage for progress reporting.
type Step struct {
	Index int
	Total int
	Name  string
	Label string
}

// Pipeline steps in execution order.
var (
	StepDownload   = Step{Index: 1, Total: 3, Name: "download", Label: "Downloading video"}
	StepExtract    = Step{Index: 2, Total: 3, Name: "extract", Label: "Extracting audio"}
	StepTranscribe = Step{Index: 3, Total: 3, Name: "transcribe", Label: "Transcribing"}
)

// runStep executes fn with step context attached, logging the transition
// and any failure. The error from fn is returned unchanged.
func (r *Runner) runStep(ctx context.Context, step Step, fn func(context.Context) error) error {
	stepCtx := services.WithStep(ctx, step.Name)
	logger := logging.WithContext(stepCtx, r.logger)

	if r.onStep != nil {
		r.onStep(step)
	}
	logger.Debug("step started", logging.String(logging.FieldEventType, "step_start"))

	started := time.Now()
	if err := fn(stepCtx); err != nil {
		logging.ErrorWithContext(logger, "step failed", "step_failure",
			logging.String(logging.FieldErrorHint, failureHint(err)),
			logging.Int("exit_code", services.ExitCode(err)),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("step completed",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.Duration("step_duration", time.Since(started)),
	)
	return nil
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingArtifact):
		return "the previous step exited cleanly but left no output; check its log lines"
	case errors.Is(err, services.ErrExternalTool):
		return "rerun with --log-level debug to see the tool output"
	default:
		return "check the flags and config values"
	}
}
