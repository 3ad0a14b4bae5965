// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The extraction step uses it to confirm a downloaded file carries an audio
// stream, to decide whether stream copy into the requested container is
// possible, and to report durations of the artifacts it produces.
package ffprobe
