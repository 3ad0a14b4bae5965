// Package extract implements the audio-extraction step.
//
// Extract takes the downloaded media file and converts its primary audio
// stream into audio.<format> inside the output directory with ffmpeg, either
// re-encoding with a fixed codec per format or stream-copying when the source
// codec already fits the target container. ffprobe is consulted before the
// run to confirm an audio stream exists and to gate stream copy.
package extract
