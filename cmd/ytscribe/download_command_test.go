package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/handoff"
	"ytscribe/internal/services"
)

// ytdlpStub appends its argv to <stub>.args, writes "Stub Video.<ext>" next
// to the output template and prints the final path the way the downloader
// asks yt-dlp to.
const ytdlpStub = `for arg; do printf '%s\n' "$arg" >> "$0.args"; done
audio=
fmt=mp3
while [ $# -gt 0 ]; do
  case "$1" in
    -o|--output) tmpl="$2"; shift ;;
    --output=*) tmpl="${1#--output=}" ;;
    -x|--extract-audio) audio=1 ;;
    --audio-format) fmt="$2"; shift ;;
    --audio-format=*) fmt="${1#--audio-format=}" ;;
  esac
  shift
done
ext=webm
if [ -n "$audio" ]; then ext="$fmt"; fi
dest="$(dirname "$tmpl")/Stub Video.$ext"
printf 'media' > "$dest"
echo "ytscribe-file:$dest"`

// useYTDLPStub installs body as the yt-dlp binary named in the config and
// returns the path of the argv log.
func (e *cliTestEnv) useYTDLPStub(t *testing.T, body, extra string) string {
	t.Helper()
	e.stub(t, "yt-dlp", body)
	bin := filepath.Join(e.binDir, "yt-dlp")
	e.writeConfig(t, fmt.Sprintf("[download]\nytdlp_binary = %q\n%s", bin, extra))
	return bin + ".args"
}

func readArgs(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read yt-dlp args: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// argValue returns the value passed for any of names, in either
// "--flag value" or "--flag=value" form.
func argValue(args []string, names ...string) string {
	for i, arg := range args {
		for _, name := range names {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if value, ok := strings.CutPrefix(arg, name+"="); ok {
				return value
			}
		}
	}
	return ""
}

func hasArg(args []string, names ...string) bool {
	for _, arg := range args {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}

func TestDownloadCommandUsesConfigMode(t *testing.T) {
	env := setupCLITestEnv(t)
	argsPath := env.useYTDLPStub(t, ytdlpStub, "mode = \"best\"\n")

	out, _, err := runCLI(t, []string{"download", "--url", "https://youtu.be/abc"}, env.configPath)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	args := readArgs(t, argsPath)
	if got := argValue(args, "-f", "--format"); got != "bestvideo*+bestaudio/best" {
		t.Fatalf("format = %q, want config mode best (args %q)", got, args)
	}
	if args[len(args)-1] != "https://youtu.be/abc" {
		t.Fatalf("url not passed last: %q", args)
	}

	media := filepath.Join(env.outDir, "Stub Video.webm")
	requireContains(t, out, "Downloaded: "+media)
	requireContains(t, out, "Marker: "+handoff.MarkerPath(env.outDir))
	marker, err := handoff.ReadMarker(env.outDir)
	if err != nil {
		t.Fatalf("ReadMarker: %v", err)
	}
	if marker != media {
		t.Fatalf("marker = %q, want %q", marker, media)
	}
}

func TestDownloadCommandFlagOverridesConfigMode(t *testing.T) {
	env := setupCLITestEnv(t)
	argsPath := env.useYTDLPStub(t, ytdlpStub, "mode = \"best\"\n")

	if _, _, err := runCLI(t, []string{"download", "--url", "u", "--mode", "worst"}, env.configPath); err != nil {
		t.Fatalf("download: %v", err)
	}
	if got := argValue(readArgs(t, argsPath), "-f", "--format"); got != "worstaudio/worst" {
		t.Fatalf("format = %q, want worstaudio/worst", got)
	}
}

func TestDownloadAudioCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	argsPath := env.useYTDLPStub(t, ytdlpStub, "")

	out, _, err := runCLI(t, []string{"download-audio", "--url", "u", "--mode", "best"}, env.configPath)
	if err != nil {
		t.Fatalf("download-audio: %v", err)
	}
	args := readArgs(t, argsPath)
	if !hasArg(args, "-x", "--extract-audio") {
		t.Fatalf("expected audio extraction flag in %q", args)
	}
	if got := argValue(args, "--audio-format"); got != "mp3" {
		t.Fatalf("audio format = %q", got)
	}
	if got := argValue(args, "--audio-quality"); got != "128K" {
		t.Fatalf("audio quality = %q", got)
	}
	if got := argValue(args, "-f", "--format"); got != "bestaudio/best" {
		t.Fatalf("format = %q, --mode must not change the audio-only selector", got)
	}

	media := filepath.Join(env.outDir, "Stub Video.mp3")
	requireContains(t, out, "Downloaded: "+media)
	if marker, err := handoff.ReadMarker(env.outDir); err != nil || marker != media {
		t.Fatalf("marker = %q, %v", marker, err)
	}
}

func TestDownloadCommandPropagatesExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	env.useYTDLPStub(t, "echo 'ERROR: Video unavailable' >&2\nexit 5", "")

	_, _, err := runCLI(t, []string{"download", "--url", "u"}, env.configPath)
	if err == nil {
		t.Fatal("expected download to fail")
	}
	if code := services.ExitCode(err); code != 5 {
		t.Fatalf("exit code = %d, want 5 (err %v)", code, err)
	}
	if _, statErr := os.Stat(handoff.MarkerPath(env.outDir)); !os.IsNotExist(statErr) {
		t.Fatal("marker must not be written after a failed download")
	}
}
