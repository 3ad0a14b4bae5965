package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ytscribe/internal/config"
	"ytscribe/internal/handoff"
	"ytscribe/internal/language"
	"ytscribe/internal/logging"
	"ytscribe/internal/media/ffprobe"
	"ytscribe/internal/services"
	"ytscribe/internal/textutil"
)

const stepName = "transcribe"

// Request describes one transcription.
type Request struct {
	Audio     string
	OutputDir string
	// Model is the engine model size; empty uses the configured default.
	Model string
	// Language is a language hint in any form language.ToISO2 accepts.
	// Empty or "auto" leaves detection to the engine.
	Language   string
	VAD        bool
	Timestamps bool
}

// Result reports the written artifacts.
type Result struct {
	TranscriptPath  string
	SegmentsPath    string
	Engine          string
	Model           string
	Language        string
	SegmentCount    int
	SpeechSpans     int
	DurationSeconds float64
}

// ProbeFunc inspects a media file.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Transcriber runs the transcription step.
type Transcriber struct {
	engine        Engine
	defaultModel  string
	ffmpegBinary  string
	ffprobeBinary string
	detector      *SilenceDetector
	cut           services.CommandRunner
	probe         ProbeFunc
	logger        *slog.Logger
	onProgress    func(position, total float64)
}

// New constructs a Transcriber using the engine and VAD settings in cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Transcriber, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stepName, "select engine", "", err)
	}
	t := cfg.Transcription
	return &Transcriber{
		engine:        engine,
		defaultModel:  t.Model,
		ffmpegBinary:  cfg.FFmpegBinary(),
		ffprobeBinary: cfg.FFprobeBinary(),
		detector:      NewSilenceDetector(cfg.FFmpegBinary(), t.VADNoiseDB, t.VADMinSilence),
		cut:           services.RunCommand,
		probe:         ffprobe.Inspect,
		logger:        logging.NewComponentLogger(logger, "transcriber"),
	}, nil
}

// WithEngine replaces the speech-recognition engine (for testing).
func (t *Transcriber) WithEngine(engine Engine) *Transcriber {
	if engine != nil {
		t.engine = engine
	}
	return t
}

// WithCommandRunners replaces the ffmpeg runners used for span cutting and
// silence detection (for testing).
func (t *Transcriber) WithCommandRunners(cut services.CommandRunner, detect services.OutputRunner) *Transcriber {
	if cut != nil {
		t.cut = cut
	}
	t.detector.WithRunner(detect)
	return t
}

// WithProbe sets a custom media inspector (for testing).
func (t *Transcriber) WithProbe(probe ProbeFunc) *Transcriber {
	if probe != nil {
		t.probe = probe
	}
	return t
}

// OnProgress registers a callback receiving the transcribed position and the
// total audio length in seconds. total is 0 when the length is unknown.
func (t *Transcriber) OnProgress(fn func(position, total float64)) *Transcriber {
	t.onProgress = fn
	return t
}

// Transcribe runs the engine over req.Audio and writes transcript.txt, plus
// transcript_segments.json when req.Timestamps is set.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (Result, error) {
	if err := handoff.RequireFile(stepName, req.Audio); err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return Result{}, services.Wrap(services.ErrValidation, stepName, "validate output", "output directory required", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stepName, "ensure output dir", req.OutputDir, err)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = t.defaultModel
	}
	lang := config.NormalizeLanguage(req.Language)
	logger := logging.WithContext(ctx, t.logger)

	if lang != "" && !language.Known(lang) {
		logging.WarnWithContext(logger, "language hint not recognized", "language_unrecognized",
			logging.String("language", lang),
			logging.String(logging.FieldErrorHint, "use an ISO 639-1 code such as en or de"),
			logging.String(logging.FieldImpact, "hint passed to the engine as given"),
		)
	}

	duration := t.audioDuration(ctx, logger, req.Audio)
	logger.Info("transcription started",
		logging.String(logging.FieldEventType, "step_start"),
		logging.String("audio_file", req.Audio),
		logging.String("engine", t.engine.Name()),
		logging.String("model", model),
		logging.String("language", language.DisplayName(lang)),
		logging.Bool("vad", req.VAD),
		logging.Bool("timestamps", req.Timestamps),
	)

	workDir, err := os.MkdirTemp(req.OutputDir, ".transcribe-*")
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, stepName, "create work dir", req.OutputDir, err)
	}
	defer os.RemoveAll(workDir)

	started := time.Now()
	reporter := newProgressReporter(t.onProgress, duration)
	base := EngineRequest{Model: model, Language: lang, WorkDir: workDir}

	var (
		recognized EngineResult
		spanCount  int
	)
	if req.VAD {
		recognized, spanCount, err = t.transcribeSpans(ctx, logger, req.Audio, duration, base, reporter)
	} else {
		recognized, err = t.transcribeWhole(ctx, req.Audio, duration, base, reporter)
	}
	if err != nil {
		return Result{}, err
	}
	reporter.finish()

	transcriptPath, err := handoff.WriteTranscript(req.OutputDir, recognized.Text)
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stepName, "write transcript", "", err)
	}
	if err := handoff.RequireFile(stepName, transcriptPath); err != nil {
		return Result{}, err
	}

	result := Result{
		TranscriptPath:  transcriptPath,
		Engine:          t.engine.Name(),
		Model:           model,
		Language:        firstNonEmpty(recognized.Language, lang),
		SegmentCount:    len(handoff.NormalizeSegments(recognized.Segments)),
		SpeechSpans:     spanCount,
		DurationSeconds: duration,
	}
	if req.Timestamps {
		segmentsPath, err := handoff.WriteSegments(req.OutputDir, recognized.Segments)
		if err != nil {
			return Result{}, services.Wrap(services.ErrExternalTool, stepName, "write segments", "", err)
		}
		result.SegmentsPath = segmentsPath
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "step_complete"),
		logging.String("transcript_file", transcriptPath),
		logging.String("language", language.DisplayName(result.Language)),
		logging.Int("segment_count", result.SegmentCount),
		logging.Duration("step_duration", time.Since(started)),
	}
	if result.SegmentsPath != "" {
		attrs = append(attrs, logging.String("segments_file", result.SegmentsPath))
	}
	if req.VAD {
		attrs = append(attrs, logging.Int("speech_spans", spanCount))
	}
	logger.Info("transcription complete", logging.Args(attrs...)...)
	return result, nil
}

func (t *Transcriber) transcribeWhole(ctx context.Context, audio string, duration float64, base EngineRequest, reporter *progressReporter) (EngineResult, error) {
	req := base
	req.Audio = audio
	req.Duration = duration
	req.Progress = reporter.at(0)
	result, err := t.engine.Transcribe(ctx, req)
	if err != nil {
		return EngineResult{}, services.Wrap(services.ErrExternalTool, stepName, t.engine.Name(), "transcribe audio", err)
	}
	return result, nil
}

// transcribeSpans splits audio on silence and transcribes each speech span.
// When no span is found the whole file is transcribed instead.
func (t *Transcriber) transcribeSpans(ctx context.Context, logger *slog.Logger, audio string, duration float64, base EngineRequest, reporter *progressReporter) (EngineResult, int, error) {
	spans, err := t.detector.SpeechSpans(ctx, audio, duration)
	if err != nil {
		return EngineResult{}, 0, services.Wrap(services.ErrExternalTool, stepName, "vad", "detect silence", err)
	}
	if len(spans) == 0 {
		logging.WarnWithContext(logger, "no speech spans detected; transcribing whole file", "vad_fallback",
			logging.String(logging.FieldErrorHint, "lower transcription.vad_noise_db if speech is quiet"),
			logging.String(logging.FieldImpact, "silence is not skipped"),
		)
		result, err := t.transcribeWhole(ctx, audio, duration, base, reporter)
		return result, 0, err
	}
	logger.Debug("speech spans detected", logging.Int("speech_spans", len(spans)))

	var (
		combined EngineResult
		texts    []string
	)
	for i, span := range spans {
		dest := filepath.Join(base.WorkDir, fmt.Sprintf("span_%03d.wav", i))
		if err := t.cut(ctx, t.ffmpegBinary, extractSpanArgs(audio, span, dest)...); err != nil {
			return EngineResult{}, 0, services.Wrap(services.ErrExternalTool, stepName, "ffmpeg", fmt.Sprintf("cut span %d", i), err)
		}
		req := base
		req.Audio = dest
		req.Duration = span.Duration()
		req.Progress = reporter.at(span.Start)
		part, err := t.engine.Transcribe(ctx, req)
		if err != nil {
			return EngineResult{}, 0, services.Wrap(services.ErrExternalTool, stepName, t.engine.Name(), fmt.Sprintf("transcribe span %d", i), err)
		}
		reporter.at(span.Start)(span.Duration())
		combined.Segments = append(combined.Segments, handoff.OffsetSegments(part.Segments, span.Start)...)
		texts = append(texts, part.Text)
		if combined.Language == "" {
			combined.Language = part.Language
		}
	}
	combined.Text = textutil.JoinSegments(texts)
	return combined, len(spans), nil
}

func (t *Transcriber) audioDuration(ctx context.Context, logger *slog.Logger, audio string) float64 {
	probe, err := t.probe(ctx, t.ffprobeBinary, audio)
	if err != nil {
		logger.Debug("audio duration unavailable", logging.Error(err))
		return 0
	}
	d := probe.DurationSeconds()
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
