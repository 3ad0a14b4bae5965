package download

import (
	"fmt"
	"strings"

	"ytscribe/internal/config"
)

// Format selectors passed to yt-dlp -f for each download mode.
const (
	formatBestAudio = "bestaudio/best"
	formatBest      = "bestvideo*+bestaudio/best"
	formatWorst     = "worstaudio/worst"
)

// FormatSelector maps a download mode onto a yt-dlp format expression. An
// empty mode means bestaudio.
func FormatSelector(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", config.ModeBestAudio:
		return formatBestAudio, nil
	case config.ModeBest:
		return formatBest, nil
	case config.ModeWorst:
		return formatWorst, nil
	default:
		return "", fmt.Errorf("unknown download mode %q (want one of %s)", mode, strings.Join(config.DownloadModes, ", "))
	}
}
