package download

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// Job is one yt-dlp invocation.
type Job struct {
	URL               string
	OutputTemplate    string
	Format            string
	RestrictFilenames bool
	ExtractAudio      bool
	AudioFormat       string
	AudioQuality      string
}

// Progress is a download progress snapshot. Percent is negative when the
// total size is unknown.
type Progress struct {
	Title           string
	Percent         float64
	DownloadedBytes int64
	TotalBytes      int64
	ETA             time.Duration
}

// Backend performs the retrieval and returns the filenames yt-dlp reported.
type Backend interface {
	Download(ctx context.Context, job Job, progress func(Progress)) ([]string, error)
}

// progressInterval is how often yt-dlp progress is sampled.
const progressInterval = 500 * time.Millisecond

// filePrefix tags the line yt-dlp prints with the final path after
// postprocessing and moving.
const filePrefix = "ytscribe-file:"

type ytdlpBackend struct {
	binary string
}

// NewYTDLPBackend returns a Backend that runs the given yt-dlp executable.
func NewYTDLPBackend(binary string) Backend {
	return ytdlpBackend{binary: binary}
}

func (b ytdlpBackend) Download(ctx context.Context, job Job, progress func(Progress)) ([]string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		NoPlaylist().
		Format(job.Format).
		Output(job.OutputTemplate).
		Print("after_move:" + filePrefix + "%(filepath)s")
	if b.binary != "" {
		dl.SetExecutable(b.binary)
	}
	if job.RestrictFilenames {
		dl.RestrictFilenames()
	}
	if job.ExtractAudio {
		dl.ExtractAudio().
			AudioFormat(job.AudioFormat).
			AudioQuality(job.AudioQuality)
	}
	if progress != nil {
		// --print implies --quiet; keep progress reporting on.
		dl.Progress()
		dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
			progress(progressFromUpdate(update))
		})
	}

	result, err := dl.Run(ctx, job.URL)
	if err != nil {
		return nil, withExitCode(result, err)
	}

	names := printedPaths(result.Stdout)
	if infos, err := result.GetExtractedInfo(); err == nil {
		for _, info := range infos {
			if info != nil && info.Filename != nil && *info.Filename != "" {
				names = append(names, *info.Filename)
			}
		}
	}
	return names, nil
}

// printedPaths returns the final file paths yt-dlp printed, last first.
func printedPaths(stdout string) []string {
	var paths []string
	for _, line := range strings.Split(stdout, "\n") {
		path, ok := strings.CutPrefix(strings.TrimSpace(line), filePrefix)
		if ok && strings.TrimSpace(path) != "" {
			paths = append([]string{strings.TrimSpace(path)}, paths...)
		}
	}
	return paths
}

func progressFromUpdate(update ytdlp.ProgressUpdate) Progress {
	p := Progress{
		Percent:         -1,
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		ETA:             update.ETA(),
	}
	if update.TotalBytes > 0 {
		p.Percent = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}
	if update.Info != nil && update.Info.Title != nil {
		p.Title = *update.Info.Title
	}
	return p
}

// toolExitError carries the yt-dlp exit status so it survives wrapping.
type toolExitError struct {
	code int
	err  error
}

func (e *toolExitError) Error() string {
	return fmt.Sprintf("yt-dlp exited with status %d: %v", e.code, e.err)
}

func (e *toolExitError) Unwrap() error { return e.err }

func (e *toolExitError) ExitCode() int { return e.code }

func withExitCode(result *ytdlp.Result, err error) error {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return err
	}
	if result != nil && result.ExitCode > 0 {
		return &toolExitError{code: result.ExitCode, err: err}
	}
	return err
}
