package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/handoff"
	"ytscribe/internal/services"
	"ytscribe/internal/testsupport"
)

const probeJSON = `{"streams":[{"index":0,"codec_type":"video","codec_name":"vp9"},{"index":1,"codec_type":"audio","codec_name":"opus","duration":"4.0"}],"format":{"duration":"4.000000","size":"2048"}}`

// ffmpegStub writes its last argument (the output path) and exits 0.
const ffmpegStub = `for last; do :; done
printf 'audio' > "$last"`

// whisperStub emits one verbose segment line and writes the JSON result
// where the whisper CLI would.
const whisperStub = `audio="$1"
while [ $# -gt 0 ]; do
  if [ "$1" = "--output_dir" ]; then out="$2"; fi
  shift
done
base=$(basename "$audio")
base="${base%.*}"
echo "[00:00.000 --> 00:01.200]  hello world"
printf '{"text":" hello  world","language":"en","segments":[{"start":0,"end":1.2,"text":" hello world"}]}' > "$out/$base.json"`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	binDir     string
	outDir     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "ytscribe.toml"),
		binDir:     filepath.Join(base, "bin"),
		outDir:     cfg.Paths.OutputDir,
	}
	env.writeConfig(t, "")
	return env
}

// writeConfig writes a config pointing at the test directories; extra is
// appended verbatim.
func (e *cliTestEnv) writeConfig(t *testing.T, extra string) {
	t.Helper()
	content := fmt.Sprintf("[paths]\noutput_dir = %q\nlog_dir = %q\n%s", e.cfg.Paths.OutputDir, e.cfg.Paths.LogDir, extra)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) stub(t *testing.T, name, body string) {
	t.Helper()
	testsupport.WriteStubBinary(t, e.binDir, name, body)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--log-level", "error"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected output to contain %q, got:\n%s", substr, output)
	}
}

func TestExtractCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "ffprobe", "printf '%s' '"+probeJSON+"'")
	env.stub(t, "ffmpeg", ffmpegStub)
	input := filepath.Join(t.TempDir(), "clip.webm")
	testsupport.WriteFile(t, input, 64)

	out, _, err := runCLI(t, []string{"extract", "--input", input, "--audio-format", "wav"}, env.configPath)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	requireContains(t, out, "Audio: "+handoff.AudioPath(env.outDir, "wav"))
	requireContains(t, out, "re-encoded")
	if _, err := os.Stat(handoff.AudioPath(env.outDir, "wav")); err != nil {
		t.Fatalf("audio missing: %v", err)
	}
}

func TestExtractCommandRejectsUnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(t.TempDir(), "clip.webm")
	testsupport.WriteFile(t, input, 64)
	_, _, err := runCLI(t, []string{"extract", "--input", input, "--audio-format", "ogg"}, env.configPath)
	if err == nil || services.ExitCode(err) != 1 {
		t.Fatalf("expected exit 1 error, got %v", err)
	}
}

func TestTranscribeCommandWritesArtifacts(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "ffprobe", "printf '%s' '"+probeJSON+"'")
	env.stub(t, "whisper", whisperStub)
	audio := filepath.Join(env.outDir, "audio.mp3")
	testsupport.WriteFile(t, audio, 64)

	out, _, err := runCLI(t, []string{"transcribe", "--audio", audio, "--timestamps"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "Transcript: "+handoff.TranscriptPath(env.outDir))
	requireContains(t, out, "Segments: "+handoff.SegmentsPath(env.outDir))

	data, err := os.ReadFile(handoff.TranscriptPath(env.outDir))
	if err != nil || string(data) != "hello world\n" {
		t.Fatalf("transcript = %q, %v", data, err)
	}
	segs, err := handoff.ReadSegments(handoff.SegmentsPath(env.outDir))
	if err != nil || len(segs) != 1 || segs[0].End != 1.2 {
		t.Fatalf("segments = %+v, %v", segs, err)
	}
}

func TestTranscribeCommandPropagatesExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "ffprobe", "printf '%s' '"+probeJSON+"'")
	env.stub(t, "whisper", "echo 'CUDA out of memory' >&2\nexit 3")
	audio := filepath.Join(env.outDir, "audio.mp3")
	testsupport.WriteFile(t, audio, 64)

	_, _, err := runCLI(t, []string{"transcribe", "--audio", audio}, env.configPath)
	if err == nil {
		t.Fatal("expected transcribe to fail")
	}
	if code := services.ExitCode(err); code != 3 {
		t.Fatalf("exit code = %d, want 3 (err %v)", code, err)
	}
	requireContains(t, err.Error(), "CUDA out of memory")
}

func TestTranscribeCommandMissingAudio(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"transcribe", "--audio", filepath.Join(env.outDir, "nope.mp3")}, env.configPath)
	if err == nil || services.ExitCode(err) != 1 {
		t.Fatalf("expected exit 1 error, got %v", err)
	}
}

func TestRunRequiresURL(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing --url error")
	}
	requireContains(t, err.Error(), "url")
}

func TestDoctorCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub(t, "ffmpeg", "echo 'ffmpeg version 7.1'")

	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "== Dependencies ==")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "ffmpeg version 7.1")
	requireContains(t, out, "Output directory")
}

func TestRootHelp(t *testing.T) {
	out, _, err := runCLI(t, []string{"--help"}, "")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"run", "download", "download-audio", "extract", "transcribe", "doctor", "config"} {
		requireContains(t, out, name)
	}
}
