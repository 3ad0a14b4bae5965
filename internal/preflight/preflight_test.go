package preflight

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail for missing dir, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDirectory_WillBeCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "outputs")
	result := CheckOutputDirectory("out", path)
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil, got %v", results)
	}
}

func TestRunAll_AllToolsPresent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	results := RunAll(context.Background(), cfg)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
		if !r.Passed {
			t.Fatalf("expected %s to pass, got %q", r.Name, r.Detail)
		}
	}
	want := []string{"FFmpeg", "FFprobe", "yt-dlp", "whisper", "Python", "Output directory"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("check order = %v, want %v", names, want)
	}
}

func TestRunAll_WhisperXChecksUVX(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Transcription.Engine = config.EngineWhisperX
	results := RunAll(context.Background(), cfg)
	found := false
	for _, r := range results {
		if r.Name == "uvx" {
			found = true
		}
		if r.Name == "Python" && !r.Optional {
			t.Fatal("python should be optional for whisperx")
		}
	}
	if !found {
		t.Fatalf("expected uvx check, got %+v", results)
	}
}

func TestLogWarningsReportsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Extract.FFmpegBinary = "definitely-missing-ffmpeg"
	results := RunAll(context.Background(), cfg)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	count := LogWarnings(logger, results)
	if count == 0 {
		t.Fatal("expected at least one failed check")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != count {
		t.Fatalf("expected %d warning lines, got %d", count, len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first["check"] != "FFmpeg" || first["event_type"] != "preflight_warning" {
		t.Fatalf("unexpected first warning: %v", first)
	}
	if first["level"] != "WARN" {
		t.Fatalf("preflight failures must be warnings, got %v", first["level"])
	}
}
