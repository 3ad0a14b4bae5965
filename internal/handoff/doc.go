// Package handoff owns the file contracts between pipeline steps.
//
// Every step communicates through well-known names inside the run's output
// directory: the download marker (last_downloaded.txt), the extracted audio
// (audio.<format>), the plain-text transcript and the optional timestamped
// segment list. Writers replace existing files atomically so re-running a
// pipeline on the same directory overwrites artifacts instead of duplicating
// them. RequireFile is the existence check the orchestrator runs between
// steps.
package handoff
