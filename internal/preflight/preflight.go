package preflight

import (
	"context"
	"fmt"
	"log/slog"

	"ytscribe/internal/config"
	"ytscribe/internal/logging"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Version  string
	Detail   string
}

// RunAll executes every preflight check for the given config: one per
// external tool plus output directory access.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	statuses := CheckSystemDeps(ctx, cfg)
	results := make([]Result, 0, len(statuses)+1)
	for _, status := range statuses {
		detail := status.Detail
		if status.Available {
			detail = status.Path
		}
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Version:  status.Version,
			Detail:   detail,
		})
	}
	results = append(results, CheckOutputDirectory("Output directory", cfg.Paths.OutputDir))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// LogWarnings emits one warning per failed check. Preflight problems never
// stop a run; the step that needs the tool fails on its own if it is truly
// missing.
func LogWarnings(logger *slog.Logger, results []Result) int {
	failed := Failed(results)
	for _, r := range failed {
		impact := fmt.Sprintf("steps that use %s will fail", r.Name)
		if r.Optional {
			impact = "optional; the pipeline can still succeed"
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_warning",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "install or configure "+r.Name+", then run ytscribe doctor"),
			logging.String(logging.FieldImpact, impact),
		)
	}
	return len(failed)
}
