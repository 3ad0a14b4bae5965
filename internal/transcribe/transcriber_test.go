package transcribe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/handoff"
	"ytscribe/internal/media/ffprobe"
	"ytscribe/internal/services"
	"ytscribe/internal/testsupport"
)

type fakeEngine struct {
	requests []EngineRequest
	result   func(req EngineRequest) EngineResult
	err      error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Transcribe(_ context.Context, req EngineRequest) (EngineResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return EngineResult{}, f.err
	}
	if req.Progress != nil {
		req.Progress(req.Duration / 2)
		req.Progress(req.Duration)
	}
	return f.result(req), nil
}

type exitErr struct{ code int }

func (e exitErr) Error() string { return "engine exited" }
func (e exitErr) ExitCode() int { return e.code }

func probeDuration(seconds string) ProbeFunc {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "mp3"}},
			Format:  ffprobe.Format{Duration: seconds},
		}, nil
	}
}

func newTranscriber(t *testing.T, engine Engine) (*Transcriber, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	tr, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.WithEngine(engine).WithProbe(probeDuration("10.0"))
	audio := filepath.Join(cfg.Paths.OutputDir, "audio.mp3")
	testsupport.WriteFile(t, audio, 128)
	return tr, audio
}

func singleSegment(text string) func(EngineRequest) EngineResult {
	return func(EngineRequest) EngineResult {
		return EngineResult{
			Text:     text,
			Language: "en",
			Segments: []handoff.Segment{{Start: 0.25, End: 1.0, Text: text}},
		}
	}
}

func TestTranscribeWholeFile(t *testing.T) {
	engine := &fakeEngine{result: singleSegment("  hello   world ")}
	tr, audio := newTranscriber(t, engine)
	outDir := filepath.Dir(audio)

	var progress [][2]float64
	tr.OnProgress(func(pos, total float64) { progress = append(progress, [2]float64{pos, total}) })

	result, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: outDir, Language: "English"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	data, err := os.ReadFile(result.TranscriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "hello world\n" {
		t.Fatalf("transcript = %q", data)
	}
	if result.SegmentsPath != "" {
		t.Fatalf("segments written without timestamps: %s", result.SegmentsPath)
	}
	if _, err := os.Stat(handoff.SegmentsPath(outDir)); !os.IsNotExist(err) {
		t.Fatalf("segments file should not exist: %v", err)
	}
	if len(engine.requests) != 1 {
		t.Fatalf("engine calls = %d", len(engine.requests))
	}
	req := engine.requests[0]
	if req.Audio != audio || req.Model != "base" || req.Language != "en" || req.Duration != 10 {
		t.Fatalf("engine request = %+v", req)
	}
	if _, err := os.Stat(req.WorkDir); !os.IsNotExist(err) {
		t.Fatalf("work dir should be removed: %v", err)
	}
	if len(progress) == 0 || progress[len(progress)-1] != [2]float64{10, 10} {
		t.Fatalf("progress = %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i][0] <= progress[i-1][0] {
			t.Fatalf("progress not monotonic: %v", progress)
		}
	}
}

func TestTranscribeWritesSegments(t *testing.T) {
	engine := &fakeEngine{result: singleSegment("hi")}
	tr, audio := newTranscriber(t, engine)

	result, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio), Model: "tiny", Timestamps: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	segs, err := handoff.ReadSegments(result.SegmentsPath)
	if err != nil {
		t.Fatalf("ReadSegments: %v", err)
	}
	if len(segs) != 1 || segs[0] != (handoff.Segment{Start: 0.25, End: 1, Text: "hi"}) {
		t.Fatalf("segments = %+v", segs)
	}
	if engine.requests[0].Model != "tiny" || engine.requests[0].Language != "" {
		t.Fatalf("engine request = %+v", engine.requests[0])
	}
	if result.SegmentCount != 1 {
		t.Fatalf("segment count = %d", result.SegmentCount)
	}
}

func TestTranscribeEmptySpeechWritesEmptyTranscript(t *testing.T) {
	engine := &fakeEngine{result: func(EngineRequest) EngineResult { return EngineResult{} }}
	tr, audio := newTranscriber(t, engine)

	result, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio), Timestamps: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	data, _ := os.ReadFile(result.TranscriptPath)
	if string(data) != "\n" {
		t.Fatalf("transcript = %q", data)
	}
	segs, _ := os.ReadFile(result.SegmentsPath)
	if strings.TrimSpace(string(segs)) != "[]" {
		t.Fatalf("segments = %q", segs)
	}
}

func TestTranscribeWithVADOffsetsSegments(t *testing.T) {
	engine := &fakeEngine{result: func(req EngineRequest) EngineResult {
		name := strings.TrimSuffix(filepath.Base(req.Audio), ".wav")
		return EngineResult{
			Text:     name,
			Language: "en",
			Segments: []handoff.Segment{{Start: 0.5, End: 1.0, Text: name}},
		}
	}}
	tr, audio := newTranscriber(t, engine)

	var cuts [][]string
	cut := func(_ context.Context, _ string, args ...string) error {
		cuts = append(cuts, args)
		return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
	}
	detect := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("[silencedetect] silence_start: 2\n[silencedetect] silence_end: 3 | silence_duration: 1\n"), nil
	}
	tr.WithCommandRunners(cut, detect)

	result, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio), VAD: true, Timestamps: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.SpeechSpans != 2 || len(cuts) != 2 || len(engine.requests) != 2 {
		t.Fatalf("spans=%d cuts=%d calls=%d", result.SpeechSpans, len(cuts), len(engine.requests))
	}
	if math.Abs(engine.requests[1].Duration-7.1) > 1e-9 {
		t.Fatalf("second span duration = %v", engine.requests[1].Duration)
	}
	data, _ := os.ReadFile(result.TranscriptPath)
	if string(data) != "span_000 span_001\n" {
		t.Fatalf("transcript = %q", data)
	}
	segs, err := handoff.ReadSegments(result.SegmentsPath)
	if err != nil {
		t.Fatalf("ReadSegments: %v", err)
	}
	if len(segs) != 2 || segs[0].Start != 0.5 || segs[1].Start != 3.4 || segs[1].End != 3.9 {
		t.Fatalf("segments = %+v", segs)
	}
}

func TestTranscribeVADWithoutSpeechFallsBack(t *testing.T) {
	engine := &fakeEngine{result: singleSegment("whole")}
	tr, audio := newTranscriber(t, engine)
	cut := func(context.Context, string, ...string) error {
		t.Fatal("no span should be cut")
		return nil
	}
	detect := func(context.Context, string, ...string) ([]byte, error) {
		return []byte("silence_start: 0\n"), nil
	}
	tr.WithCommandRunners(cut, detect)

	result, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio), VAD: true})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(engine.requests) != 1 || engine.requests[0].Audio != audio {
		t.Fatalf("engine requests = %+v", engine.requests)
	}
	if result.SpeechSpans != 0 {
		t.Fatalf("spans = %d", result.SpeechSpans)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	engine := &fakeEngine{result: singleSegment("x")}
	tr, audio := newTranscriber(t, engine)
	_, err := tr.Transcribe(context.Background(), Request{Audio: audio + ".missing", OutputDir: filepath.Dir(audio)})
	if !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("err = %v, want missing artifact", err)
	}
	if len(engine.requests) != 0 {
		t.Fatal("engine should not run")
	}
}

func TestTranscribeEngineExitCodePropagates(t *testing.T) {
	engine := &fakeEngine{err: exitErr{code: 7}}
	tr, audio := newTranscriber(t, engine)
	_, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio)})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool", err)
	}
	if code := services.ExitCode(err); code != 7 {
		t.Fatalf("exit code = %d, want 7", code)
	}
	if _, statErr := os.Stat(handoff.TranscriptPath(filepath.Dir(audio))); !os.IsNotExist(statErr) {
		t.Fatal("transcript should not be written on failure")
	}
}

func TestTranscribeUnknownDurationStillRuns(t *testing.T) {
	engine := &fakeEngine{result: singleSegment("ok")}
	tr, audio := newTranscriber(t, engine)
	tr.WithProbe(func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("no ffprobe")
	})
	if _, err := tr.Transcribe(context.Background(), Request{Audio: audio, OutputDir: filepath.Dir(audio)}); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if engine.requests[0].Duration != 0 {
		t.Fatalf("duration = %v, want 0", engine.requests[0].Duration)
	}
}
