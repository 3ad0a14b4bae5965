package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"ytscribe/internal/config"
	"ytscribe/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory behaves like CheckDirectoryAccess but accepts a
// directory that does not exist yet when its closest existing ancestor is
// writable, since the pipeline creates the output directory on demand.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// Requirements lists the external tools the configured pipeline invokes.
func Requirements(cfg *config.Config) []deps.Requirement {
	engine := deps.Requirement{
		Name:        "whisper",
		Command:     cfg.EngineBinary(),
		Description: "Speech recognition (openai-whisper CLI)",
		VersionArgs: []string{"--help"},
	}
	if cfg.Transcription.Engine == config.EngineWhisperX {
		engine = deps.Requirement{
			Name:        "uvx",
			Command:     cfg.EngineBinary(),
			Description: "Runs WhisperX for speech recognition",
			VersionArgs: []string{"--version"},
		}
	}
	return []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
			VersionArgs: []string{"-version"},
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.YTDLPBinary(),
			Description: "Required for video download",
			VersionArgs: []string{"--version"},
		},
		engine,
		{
			Name:        "Python",
			Command:     cfg.PythonBinary(),
			Description: "Interpreter hosting the speech-recognition model",
			VersionArgs: []string{"--version"},
			Optional:    cfg.Transcription.Engine == config.EngineWhisperX,
		},
	}
}

// CheckSystemDeps evaluates all external tools for the given config. Both the
// orchestrator and the doctor command use it so the list stays in one place.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(ctx, Requirements(cfg))
}
