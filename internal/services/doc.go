// Package services defines shared utilities consumed by the pipeline steps and
// the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and step names for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     external tool errors, missing artifacts, or validation problems.
//   - ExitCode, which turns a propagated step error back into the process exit
//     status the CLI reports.
//   - CommandRunner and RunCommand, the injectable subprocess seam every step
//     uses to invoke external tools.
//
// Use these helpers when wiring new step logic so error handling and
// observability stay uniform across the pipeline.
package services
