package extract

import (
	"slices"
	"strings"
)

// codecPlan describes how a target format is encoded.
type codecPlan struct {
	codec   string
	bitrate string
	// copyable lists source codecs that can be stream-copied into the
	// target container unchanged.
	copyable []string
}

var formatPlans = map[string]codecPlan{
	"mp3":  {codec: "libmp3lame", bitrate: "192k", copyable: []string{"mp3"}},
	"wav":  {codec: "pcm_s16le", copyable: []string{"pcm_s16le", "pcm_s24le", "pcm_s32le", "pcm_f32le", "pcm_u8"}},
	"m4a":  {codec: "aac", bitrate: "192k", copyable: []string{"aac", "alac"}},
	"aac":  {codec: "aac", bitrate: "192k", copyable: []string{"aac"}},
	"flac": {codec: "flac", copyable: []string{"flac"}},
	"opus": {codec: "libopus", bitrate: "128k", copyable: []string{"opus"}},
}

// Supported reports whether format is a known extraction target.
func Supported(format string) bool {
	_, ok := formatPlans[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

// CopyCompatible reports whether audio encoded with sourceCodec can be
// stream-copied into the container for format.
func CopyCompatible(format, sourceCodec string) bool {
	plan, ok := formatPlans[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return false
	}
	return slices.Contains(plan.copyable, strings.ToLower(strings.TrimSpace(sourceCodec)))
}

// BuildArgs returns the ffmpeg arguments that turn input into output. The
// first audio stream is mapped, video/subtitle/data streams are dropped and
// existing output is overwritten.
func BuildArgs(input, output, format string, copyStream bool) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", input,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
	}
	if copyStream {
		return append(args, "-c:a", "copy", output)
	}
	plan := formatPlans[strings.ToLower(strings.TrimSpace(format))]
	args = append(args, "-c:a", plan.codec)
	if plan.bitrate != "" {
		args = append(args, "-b:a", plan.bitrate)
	}
	return append(args, output)
}
