package logging_test

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
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      format,
		Level:       level,
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content := readLog(t, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if !strings.Contains(content, "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logger.Info("message without caller")
	if content := readLog(t, path); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, path := newFileLogger(t, "console", "debug")
	logger.Info("message with caller")
	if content := readLog(t, path); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersRunSubjectAndFields(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStep(ctx, "extract")

	component := logging.NewComponentLogger(logger, "extractor")
	logging.WithContext(ctx, component).Info("audio extracted",
		logging.String("audio_file", "/tmp/a.mp3"),
		logging.Int64("size_bytes", 2048),
		logging.String("output_dir", "/tmp"),
	)

	content := readLog(t, path)
	for _, want := range []string{
		"INFO [extractor] Run 01234567 (extract) – audio extracted",
		"- Audio: /tmp/a.mp3",
		"- Size: 2.0 kB",
		"+ 1 more field hidden",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, content)
		}
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logger, path := newFileLogger(t, "json", "info")
	ctx := services.WithRunID(context.Background(), "run-1")
	logging.WithContext(ctx, logger).Warn("slow", logging.String(logging.FieldEventType, "probe"))

	var payload map[string]any
	line := strings.TrimSpace(readLog(t, path))
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log %q: %v", line, err)
	}
	if payload["run_id"] != "run-1" || payload["event_type"] != "probe" || payload["level"] != "warn" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "binary missing", "preflight_warning",
		logging.String(logging.FieldErrorHint, "install ffmpeg"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error_hint"] != "install ffmpeg" {
		t.Fatalf("hint overwritten: %v", payload)
	}
	if payload["event_type"] != "preflight_warning" || payload["impact"] == nil {
		t.Fatalf("defaults missing: %v", payload)
	}
}

func TestStepLevelsOverrideBaseLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
		StepLevels:  map[string]string{"download": "warn", "Transcribe": "debug", "extract": " "},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("root debug hidden")
	logger.Info("root info shown")
	download := logger.With(logging.String(logging.FieldStep, "download"))
	download.Info("download info hidden")
	download.Warn("download warn shown")
	transcribe := logger.With(logging.String(logging.FieldStep, "transcribe"))
	transcribe.Debug("transcribe debug shown")
	extract := logger.With(logging.String(logging.FieldStep, "extract"))
	extract.Debug("extract debug hidden")

	content := readLog(t, logPath)
	for _, hidden := range []string{"root debug hidden", "download info hidden", "extract debug hidden"} {
		if strings.Contains(content, hidden) {
			t.Fatalf("%q should be filtered:\n%s", hidden, content)
		}
	}
	for _, shown := range []string{"root info shown", "download warn shown", "transcribe debug shown"} {
		if !strings.Contains(content, shown) {
			t.Fatalf("%q should be logged:\n%s", shown, content)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := logging.ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
