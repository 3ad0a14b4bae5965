package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ytscribe/internal/config"
	"ytscribe/internal/fileutil"
	"ytscribe/internal/handoff"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

const stepName = "download"

// outputTemplate names downloads after the video title.
const outputTemplate = "%(title)s.%(ext)s"

// Request describes one download.
type Request struct {
	URL       string
	OutputDir string
	// Mode selects the format expression; see FormatSelector.
	Mode string
}

// Result reports the downloaded file and the marker that records it.
type Result struct {
	MediaPath  string
	MarkerPath string
	Title      string
	SizeBytes  int64
}

// Downloader runs the downloader step.
type Downloader struct {
	backend           Backend
	logger            *slog.Logger
	restrictFilenames bool
	audioFormat       string
	audioQuality      string
	onProgress        func(Progress)
}

// New constructs a Downloader that drives the configured yt-dlp binary.
func New(cfg *config.Config, logger *slog.Logger) *Downloader {
	d := &Downloader{
		backend:      NewYTDLPBackend(""),
		logger:       logging.NewComponentLogger(logger, "downloader"),
		audioFormat:  "mp3",
		audioQuality: "128K",
	}
	if cfg != nil {
		d.backend = NewYTDLPBackend(cfg.YTDLPBinary())
		d.restrictFilenames = cfg.Download.RestrictFilenames
		if cfg.Download.AudioFormat != "" {
			d.audioFormat = cfg.Download.AudioFormat
		}
		if cfg.Download.AudioQuality != "" {
			d.audioQuality = cfg.Download.AudioQuality
		}
	}
	return d
}

// WithBackend replaces the retrieval backend (for testing).
func (d *Downloader) WithBackend(backend Backend) *Downloader {
	if backend != nil {
		d.backend = backend
	}
	return d
}

// OnProgress registers a callback for raw progress snapshots, used by the
// CLI to drive an interactive progress bar.
func (d *Downloader) OnProgress(fn func(Progress)) *Downloader {
	d.onProgress = fn
	return d
}

// Download retrieves req.URL using the format selected by req.Mode.
func (d *Downloader) Download(ctx context.Context, req Request) (Result, error) {
	format, err := FormatSelector(req.Mode)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate mode", "", err)
	}
	return d.fetch(ctx, req, Job{Format: format})
}

// DownloadAudio retrieves req.URL as audio only, post-processed to the
// configured audio format (MP3 at 128K by default). req.Mode is ignored.
func (d *Downloader) DownloadAudio(ctx context.Context, req Request) (Result, error) {
	return d.fetch(ctx, req, Job{
		Format:       formatBestAudio,
		ExtractAudio: true,
		AudioFormat:  d.audioFormat,
		AudioQuality: d.audioQuality,
	})
}

func (d *Downloader) fetch(ctx context.Context, req Request, job Job) (Result, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate url", "url required", nil)
	}
	outDir := strings.TrimSpace(req.OutputDir)
	if outDir == "" {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate output", "output directory required", nil)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stepName, "ensure output dir", outDir, err)
	}

	job.URL = url
	job.OutputTemplate = filepath.Join(outDir, outputTemplate)
	job.RestrictFilenames = d.restrictFilenames

	logger := logging.WithContext(ctx, d.logger)
	logger.Info("download started",
		logging.String(logging.FieldEventType, "step_start"),
		logging.String("url", url),
		logging.String("format", job.Format),
		logging.Bool("audio_only", job.ExtractAudio),
	)

	var title string
	sampler := logging.NewProgressSampler(0)
	progress := func(p Progress) {
		if p.Title != "" {
			title = p.Title
		}
		if d.onProgress != nil {
			d.onProgress(p)
		}
		if sampler.ShouldLog(p.Percent, p.Title) {
			logger.Debug("download progress",
				logging.String("title", p.Title),
				logging.Float64(logging.FieldProgressPercent, p.Percent),
				logging.String(logging.FieldProgressMessage, progressMessage(p)),
				logging.Int64("downloaded_bytes", p.DownloadedBytes),
				logging.Int64("total_bytes", p.TotalBytes),
				logging.Duration("eta", p.ETA),
			)
		}
	}

	started := time.Now()
	reported, err := d.backend.Download(ctx, job, progress)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, stepName, "yt-dlp", "download cancelled", ctxErr)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, stepName, "yt-dlp", "download "+url, err)
	}

	mediaPath, err := resolveMediaPath(outDir, reported, job)
	if err != nil {
		return Result{}, err
	}
	markerPath, err := handoff.WriteMarker(outDir, mediaPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stepName, "write marker", "", err)
	}

	result := Result{MediaPath: mediaPath, MarkerPath: markerPath, Title: title}
	if size, err := fileutil.FileSize(mediaPath); err == nil {
		result.SizeBytes = size
	}
	logger.Info("download complete",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.String("video_file", mediaPath),
		logging.String("title", title),
		logging.Int64("size_bytes", result.SizeBytes),
		logging.Duration("step_duration", time.Since(started)),
	)
	return result, nil
}

// resolveMediaPath picks the file the download produced. Reported names are
// tried as given, then relative to outDir; info JSON names predate audio
// extraction, so the target extension is also tried. Only when nothing
// reported exists is the newest media-looking file in outDir used.
func resolveMediaPath(outDir string, reported []string, job Job) (string, error) {
	for _, name := range reported {
		variants := []string{name}
		if job.ExtractAudio && job.AudioFormat != "" {
			variants = append(variants, strings.TrimSuffix(name, filepath.Ext(name))+"."+job.AudioFormat)
		}
		for _, variant := range variants {
			candidates := []string{variant}
			if !filepath.IsAbs(variant) {
				candidates = append(candidates, filepath.Join(outDir, variant))
			}
			for _, candidate := range candidates {
				if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
					return filepath.Abs(candidate)
				}
			}
		}
	}

	newest, ok, err := fileutil.NewestFile(outDir, ".part", ".ytdl", ".tmp", ".txt", ".json", ".lock")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", services.Wrap(services.ErrMissingArtifact, stepName, "locate download", outDir, err)
	}
	if !ok || isHandoffAudio(newest) {
		return "", services.Wrap(services.ErrMissingArtifact, stepName, "locate download",
			fmt.Sprintf("yt-dlp reported success but no downloaded file was found in %s", outDir), nil)
	}
	return newest, nil
}

func isHandoffAudio(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "audio.")
}

func progressMessage(p Progress) string {
	if p.TotalBytes <= 0 {
		return humanize.Bytes(uint64(max(p.DownloadedBytes, 0))) + " received"
	}
	return fmt.Sprintf("%s of %s", humanize.Bytes(uint64(max(p.DownloadedBytes, 0))), humanize.Bytes(uint64(p.TotalBytes)))
}
