package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytscribe/internal/config"
	"ytscribe/internal/download"
	"ytscribe/internal/extract"
	"ytscribe/internal/handoff"
	"ytscribe/internal/logging"
	"ytscribe/internal/preflight"
	"ytscribe/internal/services"
	"ytscribe/internal/transcribe"
)

// Downloader is the download step.
type Downloader interface {
	Download(ctx context.Context, req download.Request) (download.Result, error)
}

// Extractor is the audio-extraction step.
type Extractor interface {
	Extract(ctx context.Context, req extract.Request) (extract.Result, error)
}

// Transcriber is the transcription step.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Result, error)
}

// PreflightFunc reports on external tool availability.
type PreflightFunc func(ctx context.Context, cfg *config.Config) []preflight.Result

// Request holds the fully resolved options for one run.
type Request struct {
	URL         string
	OutputDir   string
	Mode        string
	AudioFormat string
	Copy        bool
	Model       string
	Language    string
	VAD         bool
	Timestamps  bool
	// SkipPreflight disables the tool availability report.
	SkipPreflight bool
}

// Result lists the artifacts of a completed run.
type Result struct {
	RunID          string
	MediaPath      string
	AudioPath      string
	TranscriptPath string
	SegmentsPath   string
	Warnings       int
	Elapsed        time.Duration
}

// Runner sequences the pipeline steps.
type Runner struct {
	cfg         *config.Config
	logger      *slog.Logger
	downloader  Downloader
	extractor   Extractor
	transcriber Transcriber
	preflight   PreflightFunc
	onStep      func(Step)
	newRunID    func() string
}

// New constructs a Runner over the supplied steps.
func New(cfg *config.Config, logger *slog.Logger, d Downloader, e Extractor, t Transcriber) *Runner {
	return &Runner{
		cfg:         cfg,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		downloader:  d,
		extractor:   e,
		transcriber: t,
		preflight:   preflight.RunAll,
		newRunID:    uuid.NewString,
	}
}

// WithPreflight replaces the pre-flight check (for testing).
func (r *Runner) WithPreflight(fn PreflightFunc) *Runner {
	if fn != nil {
		r.preflight = fn
	}
	return r
}

// OnStep registers a callback invoked as each step starts.
func (r *Runner) OnStep(fn func(Step)) *Runner {
	r.onStep = fn
	return r
}

// Run executes download, extraction, and transcription in order. Each step's
// artifact is verified on disk before the next step starts.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if err := r.validate(&req); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "ensure output dir", req.OutputDir, err)
	}
	release, err := acquireLock(req.OutputDir)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := release(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	result := Result{RunID: r.newRunID()}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := time.Now()

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("url", req.URL),
		logging.String("output_dir", req.OutputDir),
		logging.String("audio_format", req.AudioFormat),
		logging.String("model", req.Model),
	)

	if !req.SkipPreflight && r.preflight != nil {
		result.Warnings = preflight.LogWarnings(logger, r.preflight(ctx, r.cfg))
	}

	err = r.runStep(ctx, StepDownload, func(ctx context.Context) error {
		if err := clearStale(handoff.MarkerPath(req.OutputDir)); err != nil {
			return err
		}
		if _, err := r.downloader.Download(ctx, download.Request{URL: req.URL, OutputDir: req.OutputDir, Mode: req.Mode}); err != nil {
			return err
		}
		media, err := handoff.ReadMarker(req.OutputDir)
		if err != nil {
			return err
		}
		result.MediaPath = media
		return nil
	})
	if err != nil {
		return result, err
	}

	err = r.runStep(ctx, StepExtract, func(ctx context.Context) error {
		if err := clearStale(handoff.AudioPath(req.OutputDir, req.AudioFormat)); err != nil {
			return err
		}
		if _, err := r.extractor.Extract(ctx, extract.Request{
			Input:     result.MediaPath,
			OutputDir: req.OutputDir,
			Format:    req.AudioFormat,
			Copy:      req.Copy,
		}); err != nil {
			return err
		}
		audio := handoff.AudioPath(req.OutputDir, req.AudioFormat)
		if err := handoff.RequireFile(StepExtract.Name, audio); err != nil {
			return err
		}
		result.AudioPath = audio
		return nil
	})
	if err != nil {
		return result, err
	}

	err = r.runStep(ctx, StepTranscribe, func(ctx context.Context) error {
		if err := clearStale(handoff.TranscriptPath(req.OutputDir), handoff.SegmentsPath(req.OutputDir)); err != nil {
			return err
		}
		out, err := r.transcriber.Transcribe(ctx, transcribe.Request{
			Audio:      result.AudioPath,
			OutputDir:  req.OutputDir,
			Model:      req.Model,
			Language:   req.Language,
			VAD:        req.VAD,
			Timestamps: req.Timestamps,
		})
		if err != nil {
			return err
		}
		transcript := handoff.TranscriptPath(req.OutputDir)
		if err := handoff.RequireFile(StepTranscribe.Name, transcript); err != nil {
			return err
		}
		result.TranscriptPath = transcript
		result.SegmentsPath = out.SegmentsPath
		return nil
	})
	if err != nil {
		return result, err
	}

	result.Elapsed = time.Since(started)
	logger.Info("pipeline complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("transcript_file", result.TranscriptPath),
		logging.Duration("duration", result.Elapsed),
	)
	return result, nil
}

func (r *Runner) validate(req *Request) error {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return services.Wrap(services.ErrValidation, "pipeline", "validate request", "url is required", nil)
	}
	req.OutputDir = strings.TrimSpace(req.OutputDir)
	if req.OutputDir == "" {
		return services.Wrap(services.ErrValidation, "pipeline", "validate request", "output directory is required", nil)
	}
	req.AudioFormat = config.NormalizeAudioFormat(req.AudioFormat)
	if err := config.ValidateAudioFormat(req.AudioFormat); err != nil {
		return services.Wrap(services.ErrValidation, "pipeline", "validate request", "", err)
	}
	if r.downloader == nil || r.extractor == nil || r.transcriber == nil {
		return services.Wrap(services.ErrConfiguration, "pipeline", "validate request", "pipeline steps not configured", nil)
	}
	return nil
}

// clearStale removes artifacts left by an earlier run so the existence check
// after a step only passes for files that step produced.
func clearStale(paths ...string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrConfiguration, "pipeline", "clear stale artifact", path, err)
		}
	}
	return nil
}
