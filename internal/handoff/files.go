package handoff

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/fileutil"
	"ytscribe/internal/services"
)

const (
	// MarkerFileName holds the absolute path of the downloaded media file.
	MarkerFileName = "last_downloaded.txt"
	// TranscriptFileName is the plain-text transcript.
	TranscriptFileName = "transcript.txt"
	// SegmentsFileName is the JSON array of timestamped segments.
	SegmentsFileName = "transcript_segments.json"
	// LockFileName guards an output directory against concurrent runs.
	LockFileName = ".ytscribe.lock"
)

// AudioFileName returns the fixed extraction artifact name for a format.
func AudioFileName(format string) string {
	return "audio." + strings.ToLower(strings.TrimSpace(format))
}

// AudioPath returns the extraction artifact path inside outDir.
func AudioPath(outDir, format string) string {
	return filepath.Join(outDir, AudioFileName(format))
}

// MarkerPath returns the download marker path inside outDir.
func MarkerPath(outDir string) string {
	return filepath.Join(outDir, MarkerFileName)
}

// TranscriptPath returns the transcript path inside outDir.
func TranscriptPath(outDir string) string {
	return filepath.Join(outDir, TranscriptFileName)
}

// SegmentsPath returns the segment list path inside outDir.
func SegmentsPath(outDir string) string {
	return filepath.Join(outDir, SegmentsFileName)
}

// WriteMarker records the downloaded media path in the marker file as a
// single absolute path followed by a newline.
func WriteMarker(outDir, mediaPath string) (string, error) {
	abs, err := filepath.Abs(mediaPath)
	if err != nil {
		return "", fmt.Errorf("resolve media path: %w", err)
	}
	path := MarkerPath(outDir)
	if err := fileutil.WriteFileAtomic(path, []byte(abs+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write download marker: %w", err)
	}
	return path, nil
}

// ReadMarker returns the media path recorded in outDir's marker file. A
// missing or empty marker, or a marker naming a file that does not exist, is
// reported as services.ErrMissingArtifact.
func ReadMarker(outDir string) (string, error) {
	path := MarkerPath(outDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrMissingArtifact, "download", "read marker", "marker file not found: "+path, nil)
		}
		return "", services.Wrap(services.ErrMissingArtifact, "download", "read marker", path, err)
	}
	mediaPath := strings.TrimSpace(string(data))
	if mediaPath == "" {
		return "", services.Wrap(services.ErrMissingArtifact, "download", "read marker", "marker file is empty: "+path, nil)
	}
	if !filepath.IsAbs(mediaPath) {
		mediaPath = filepath.Join(outDir, mediaPath)
	}
	if err := RequireFile("download", mediaPath); err != nil {
		return "", err
	}
	return mediaPath, nil
}

// RequireFile verifies that a step produced a non-directory file at path.
func RequireFile(step, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrMissingArtifact, step, "verify output", "expected file not found: "+path, nil)
		}
		return services.Wrap(services.ErrMissingArtifact, step, "verify output", path, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrMissingArtifact, step, "verify output", "expected file but found directory: "+path, nil)
	}
	return nil
}
