// Package pipeline sequences the download, extraction, and transcription
// steps for one URL.
//
// Steps hand results to each other through the well-known files in the
// output directory (see package handoff). After every step the runner
// verifies the expected artifact exists before starting the next one, and
// the first failure aborts the run with its error intact so callers can map
// it to an exit status via services.ExitCode. A run holds an advisory lock
// on the output directory for its whole duration.
package pipeline
