package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytscribe/internal/config"
	"ytscribe/internal/handoff"
	"ytscribe/internal/textutil"
)

// EngineRequest is one engine invocation over a single audio file.
type EngineRequest struct {
	Audio   string
	WorkDir string
	Model   string
	// Language is an ISO 639-1 hint; empty means autodetect.
	Language string
	// Duration of Audio in seconds when known, used to turn percentage
	// progress into a position.
	Duration float64
	// Progress receives the transcribed position in seconds.
	Progress func(position float64)
}

// EngineResult is what an engine recognized.
type EngineResult struct {
	Text     string
	Language string
	Segments []handoff.Segment
}

// Engine is a speech-recognition backend.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, req EngineRequest) (EngineResult, error)
}

// NewEngine returns the engine selected by cfg.Transcription.Engine.
func NewEngine(cfg *config.Config) (Engine, error) {
	switch cfg.Transcription.Engine {
	case "", config.EngineWhisper:
		return NewWhisperEngine(cfg), nil
	case config.EngineWhisperX:
		return NewWhisperXEngine(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported transcription engine %q", cfg.Transcription.Engine)
	}
}

// resultPayload covers the JSON written by both whisper and whisperx.
type resultPayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// loadResult reads an engine JSON result. Text falls back to the joined
// segment texts when the payload has no top-level text (whisperx).
func loadResult(path string) (EngineResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineResult{}, fmt.Errorf("read engine output: %w", err)
	}
	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return EngineResult{}, fmt.Errorf("parse engine output %s: %w", filepath.Base(path), err)
	}
	result := EngineResult{Language: strings.TrimSpace(payload.Language)}
	texts := make([]string, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		result.Segments = append(result.Segments, handoff.Segment{Start: seg.Start, End: seg.End, Text: seg.Text})
		texts = append(texts, seg.Text)
	}
	result.Text = textutil.NormalizeTranscript(payload.Text)
	if result.Text == "" {
		result.Text = textutil.JoinSegments(texts)
	}
	return result, nil
}

// resultPath is where whisper-style CLIs write JSON for audio inside outDir.
func resultPath(outDir, audio string) string {
	base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	return filepath.Join(outDir, base+".json")
}
