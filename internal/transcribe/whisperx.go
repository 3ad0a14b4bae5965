package transcribe

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"ytscribe/internal/config"
	"ytscribe/internal/services"
)

// WhisperX invocation settings.
const (
	whisperXCUDAIndexURL   = "https://download.pytorch.org/whl/cu128"
	whisperXPypiIndexURL   = "https://pypi.org/simple"
	whisperXBatchSize      = "4"
	whisperXCPUComputeType = "float32"
	vadMethodPyannote      = "pyannote"
	vadMethodSilero        = "silero"
)

var whisperXProgressLine = regexp.MustCompile(`Progress:\s*([0-9]+(?:\.[0-9]+)?)%`)

// WhisperXEngine runs WhisperX through uvx.
type WhisperXEngine struct {
	binary   string
	beamSize int
	bestOf   int
	cuda     bool
	hfToken  string
	run      services.LineRunner
}

// NewWhisperXEngine configures the WhisperX engine from cfg.
func NewWhisperXEngine(cfg *config.Config) *WhisperXEngine {
	return &WhisperXEngine{
		binary:   cfg.EngineBinary(),
		beamSize: cfg.Transcription.BeamSize,
		bestOf:   cfg.Transcription.BestOf,
		cuda:     cfg.Transcription.CUDA,
		hfToken:  cfg.Transcription.HFToken,
		run:      services.RunCommandLines,
	}
}

// WithRunner sets a custom command runner (for testing).
func (e *WhisperXEngine) WithRunner(runner services.LineRunner) *WhisperXEngine {
	if runner != nil {
		e.run = runner
	}
	return e
}

// Name implements Engine.
func (e *WhisperXEngine) Name() string { return config.EngineWhisperX }

// Transcribe implements Engine.
func (e *WhisperXEngine) Transcribe(ctx context.Context, req EngineRequest) (EngineResult, error) {
	onLine := func(line string) {
		if req.Progress == nil || req.Duration <= 0 {
			return
		}
		match := whisperXProgressLine.FindStringSubmatch(line)
		if match == nil {
			return
		}
		if pct, err := strconv.ParseFloat(match[1], 64); err == nil {
			req.Progress(req.Duration * pct / 100)
		}
	}
	// Torch 2.6 changed torch.load to weights_only=true, which breaks pyannote checkpoints.
	env := append([]string{"TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1"}, pythonEnv...)
	if err := e.run(ctx, env, onLine, e.binary, e.buildArgs(req)...); err != nil {
		return EngineResult{}, fmt.Errorf("whisperx: %w", err)
	}
	return loadResult(resultPath(req.WorkDir, req.Audio))
}

func (e *WhisperXEngine) buildArgs(req EngineRequest) []string {
	args := make([]string, 0, 32)
	if e.cuda {
		args = append(args, "--index-url", whisperXCUDAIndexURL, "--extra-index-url", whisperXPypiIndexURL)
	} else {
		args = append(args, "--index-url", whisperXPypiIndexURL)
	}
	args = append(args,
		"whisperx",
		req.Audio,
		"--model", req.Model,
		"--batch_size", whisperXBatchSize,
		"--output_dir", req.WorkDir,
		"--output_format", "json",
		"--beam_size", strconv.Itoa(e.beamSize),
		"--best_of", strconv.Itoa(e.bestOf),
		"--print_progress", "True",
	)
	if e.hfToken != "" {
		args = append(args, "--vad_method", vadMethodPyannote, "--hf_token", e.hfToken)
	} else {
		args = append(args, "--vad_method", vadMethodSilero)
	}
	if req.Language != "" {
		args = append(args, "--language", req.Language)
	}
	if e.cuda {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", whisperXCPUComputeType)
	}
	return args
}
