package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Download contains configuration for the video download step.
type Download struct {
	// Mode selects the yt-dlp format selector ("bestaudio", "best", "worst").
	Mode string `toml:"mode"`
	// AudioFormat and AudioQuality drive the audio-only downloader's postprocessing.
	AudioFormat       string `toml:"audio_format"`
	AudioQuality      string `toml:"audio_quality"`
	YTDLPBinary       string `toml:"ytdlp_binary"`
	RestrictFilenames bool   `toml:"restrict_filenames"`
}

// Extract contains configuration for the audio extraction step.
type Extract struct {
	AudioFormat   string `toml:"audio_format"`
	Copy          bool   `toml:"copy"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Transcription contains configuration for the speech-recognition step.
type Transcription struct {
	// Engine selects the backend: "whisper" (openai-whisper CLI) or "whisperx" (via uvx).
	Engine     string `toml:"engine"`
	Model      string `toml:"model"`
	Language   string `toml:"language"`
	VAD        bool   `toml:"vad"`
	Timestamps bool   `toml:"timestamps"`
	BeamSize   int    `toml:"beam_size"`
	BestOf     int    `toml:"best_of"`
	CUDA       bool   `toml:"cuda"`
	// HFToken is the Hugging Face token forwarded to whisperx for pyannote VAD.
	HFToken       string  `toml:"hf_token"`
	WhisperBinary string  `toml:"whisper_binary"`
	UVXBinary     string  `toml:"uvx_binary"`
	PythonBinary  string  `toml:"python_binary"`
	VADNoiseDB    float64 `toml:"vad_noise_db"`
	VADMinSilence float64 `toml:"vad_min_silence"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string            `toml:"format"`
	Level      string            `toml:"level"`
	StepLevels map[string]string `toml:"step_levels"`
}

// Config encapsulates all configuration values for ytscribe.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Download: yt-dlp format mode and audio-only postprocessing
//   - Extract: target audio format and ffmpeg/ffprobe binaries
//   - Transcription: engine, model, language hint, VAD, and timestamps
//   - Logging: log format, level, and per-step overrides
type Config struct {
	Paths         Paths         `toml:"paths"`
	Download      Download      `toml:"download"`
	Extract       Extract       `toml:"extract"`
	Transcription Transcription `toml:"transcription"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for extraction and VAD.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Extract.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Extract.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// YTDLPBinary returns the yt-dlp executable driven by the downloader.
func (c *Config) YTDLPBinary() string {
	if bin := strings.TrimSpace(c.Download.YTDLPBinary); bin != "" {
		return bin
	}
	return defaultYTDLPBinary
}

// EngineBinary returns the executable the configured transcription engine runs.
func (c *Config) EngineBinary() string {
	if c.Transcription.Engine == EngineWhisperX {
		if bin := strings.TrimSpace(c.Transcription.UVXBinary); bin != "" {
			return bin
		}
		return defaultUVXBinary
	}
	if bin := strings.TrimSpace(c.Transcription.WhisperBinary); bin != "" {
		return bin
	}
	return defaultWhisperBinary
}

// PythonBinary returns the interpreter probed during pre-flight checks.
func (c *Config) PythonBinary() string {
	if bin := strings.TrimSpace(c.Transcription.PythonBinary); bin != "" {
		return bin
	}
	return defaultPythonBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
