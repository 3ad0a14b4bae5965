package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/fileutil"
	"ytscribe/internal/handoff"
	"ytscribe/internal/logging"
	"ytscribe/internal/media/ffprobe"
	"ytscribe/internal/services"
)

const stepName = "extract"

// Request describes one extraction.
type Request struct {
	Input     string
	OutputDir string
	Format    string
	// Copy requests stream copy instead of re-encoding.
	Copy bool
}

// Result reports the produced audio artifact.
type Result struct {
	AudioPath       string
	Format          string
	SourceCodec     string
	Copied          bool
	SizeBytes       int64
	DurationSeconds float64
}

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Extractor runs the audio-extraction step.
type Extractor struct {
	ffmpegBinary  string
	ffprobeBinary string
	logger        *slog.Logger
	run           services.CommandRunner
	probe         ProbeFunc
}

// New constructs an Extractor using the configured ffmpeg and ffprobe binaries.
func New(cfg *config.Config, logger *slog.Logger) *Extractor {
	e := &Extractor{
		ffmpegBinary:  "ffmpeg",
		ffprobeBinary: "ffprobe",
		logger:        logging.NewComponentLogger(logger, "extractor"),
		run:           services.RunCommand,
		probe:         ffprobe.Inspect,
	}
	if cfg != nil {
		e.ffmpegBinary = cfg.FFmpegBinary()
		e.ffprobeBinary = cfg.FFprobeBinary()
	}
	return e
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner services.CommandRunner) *Extractor {
	if runner != nil {
		e.run = runner
	}
	return e
}

// WithProbe sets a custom media inspector (for testing).
func (e *Extractor) WithProbe(probe ProbeFunc) *Extractor {
	if probe != nil {
		e.probe = probe
	}
	return e
}

// Extract converts req.Input into audio.<format> inside req.OutputDir.
func (e *Extractor) Extract(ctx context.Context, req Request) (Result, error) {
	format := config.NormalizeAudioFormat(req.Format)
	if !Supported(format) {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate format",
			fmt.Sprintf("unsupported audio format %q (want one of %s)", req.Format, strings.Join(config.AudioFormats, ", ")), nil)
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate output", "output directory required", nil)
	}
	if err := handoff.RequireFile(stepName, req.Input); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stepName, "ensure output dir", req.OutputDir, err)
	}

	logger := logging.WithContext(ctx, e.logger)

	source, err := e.probe(ctx, e.ffprobeBinary, req.Input)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stepName, "ffprobe", "inspect input", err)
	}
	if source.AudioStreamCount() == 0 {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "inspect input", "input has no audio stream: "+req.Input, nil)
	}
	codec := source.AudioCodec()
	if req.Copy && !CopyCompatible(format, codec) {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "stream copy",
			fmt.Sprintf("source codec %q cannot be copied into .%s; drop --copy to re-encode", codec, format), nil)
	}

	output := handoff.AudioPath(req.OutputDir, format)
	args := BuildArgs(req.Input, output, format, req.Copy)
	logger.Debug("running ffmpeg", logging.String("command", e.ffmpegBinary), logging.Any("args", args))

	started := time.Now()
	if err := e.run(ctx, e.ffmpegBinary, args...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stepName, "ffmpeg", "extract audio", err)
	}
	if err := handoff.RequireFile(stepName, output); err != nil {
		return Result{}, err
	}

	result := Result{
		AudioPath:       output,
		Format:          format,
		SourceCodec:     codec,
		Copied:          req.Copy,
		DurationSeconds: source.DurationSeconds(),
	}
	if size, err := fileutil.FileSize(output); err == nil {
		result.SizeBytes = size
	}

	logger.Info("audio extracted",
		logging.String(logging.FieldEventType, "step_complete"),
		logging.String("audio_file", output),
		logging.String("audio_format", format),
		logging.String("source_codec", codec),
		logging.Bool("stream_copy", req.Copy),
		logging.Int64("size_bytes", result.SizeBytes),
		logging.Duration("step_duration", time.Since(started)),
	)
	return result, nil
}
