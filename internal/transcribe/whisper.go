package transcribe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ytscribe/internal/config"
	"ytscribe/internal/services"
)

// pythonEnv makes Python CLIs flush progress lines as they are printed.
var pythonEnv = []string{"PYTHONUNBUFFERED=1"}

// whisperSegmentLine matches verbose whisper output such as
// "[00:05.000 --> 00:09.240]  text" or "[01:02:03.000 --> 01:02:07.500] text".
var whisperSegmentLine = regexp.MustCompile(`^\[((?:\d+:)?\d+:\d+\.\d+) --> ((?:\d+:)?\d+:\d+\.\d+)\]`)

// WhisperEngine runs the openai-whisper command-line tool.
type WhisperEngine struct {
	binary   string
	beamSize int
	bestOf   int
	cuda     bool
	run      services.LineRunner
}

// NewWhisperEngine configures the whisper CLI engine from cfg.
func NewWhisperEngine(cfg *config.Config) *WhisperEngine {
	return &WhisperEngine{
		binary:   cfg.EngineBinary(),
		beamSize: cfg.Transcription.BeamSize,
		bestOf:   cfg.Transcription.BestOf,
		cuda:     cfg.Transcription.CUDA,
		run:      services.RunCommandLines,
	}
}

// WithRunner sets a custom command runner (for testing).
func (e *WhisperEngine) WithRunner(runner services.LineRunner) *WhisperEngine {
	if runner != nil {
		e.run = runner
	}
	return e
}

// Name implements Engine.
func (e *WhisperEngine) Name() string { return config.EngineWhisper }

// Transcribe implements Engine.
func (e *WhisperEngine) Transcribe(ctx context.Context, req EngineRequest) (EngineResult, error) {
	onLine := func(line string) {
		if req.Progress == nil {
			return
		}
		if end, ok := parseWhisperSegmentEnd(line); ok {
			req.Progress(end)
		}
	}
	if err := e.run(ctx, pythonEnv, onLine, e.binary, e.buildArgs(req)...); err != nil {
		return EngineResult{}, fmt.Errorf("whisper: %w", err)
	}
	return loadResult(resultPath(req.WorkDir, req.Audio))
}

func (e *WhisperEngine) buildArgs(req EngineRequest) []string {
	args := []string{
		req.Audio,
		"--model", req.Model,
		"--output_dir", req.WorkDir,
		"--output_format", "json",
		"--beam_size", strconv.Itoa(e.beamSize),
		"--best_of", strconv.Itoa(e.bestOf),
		"--verbose", "True",
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if e.cuda {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--fp16", "False")
	}
	return args
}

func parseWhisperSegmentEnd(line string) (float64, bool) {
	match := whisperSegmentLine.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	return parseClock(match[2])
}

// parseClock converts [hh:]mm:ss.fff into seconds.
func parseClock(value string) (float64, bool) {
	parts := strings.Split(value, ":")
	total := 0.0
	for _, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
