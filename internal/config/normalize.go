package config

import (
	"fmt"
	"os"
	"strings"

	langpkg "ytscribe/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeExtract()
	c.normalizeTranscription()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("YTSCRIBE_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = strings.TrimSpace(value)
		} else {
			c.Paths.OutputDir = defaultOutputDir
		}
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDownload() {
	c.Download.Mode = strings.ToLower(strings.TrimSpace(c.Download.Mode))
	if c.Download.Mode == "" {
		c.Download.Mode = defaultDownloadMode
	}
	c.Download.AudioFormat = strings.ToLower(strings.TrimSpace(c.Download.AudioFormat))
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = defaultDownloadAudio
	}
	c.Download.AudioQuality = strings.TrimSpace(c.Download.AudioQuality)
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultDownloadQuality
	}
}

func (c *Config) normalizeExtract() {
	c.Extract.AudioFormat = NormalizeAudioFormat(c.Extract.AudioFormat)
	if c.Extract.AudioFormat == "" {
		c.Extract.AudioFormat = defaultExtractAudioFormat
	}
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Engine = strings.ToLower(strings.TrimSpace(t.Engine))
	if t.Engine == "" {
		t.Engine = defaultEngine
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		t.Model = defaultModel
	}
	t.Language = NormalizeLanguage(t.Language)
	if t.BeamSize == 0 {
		t.BeamSize = defaultBeamSize
	}
	if t.BestOf == 0 {
		t.BestOf = defaultBestOf
	}
	if t.VADNoiseDB == 0 {
		t.VADNoiseDB = defaultVADNoiseDB
	}
	if t.VADMinSilence == 0 {
		t.VADMinSilence = defaultVADMinSilence
	}
	if strings.TrimSpace(t.HFToken) == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			t.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			t.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Logging.StepLevels) > 0 {
		normalized := make(map[string]string, len(c.Logging.StepLevels))
		for step, level := range c.Logging.StepLevels {
			step = strings.ToLower(strings.TrimSpace(step))
			if step == "" {
				continue
			}
			normalized[step] = strings.ToLower(strings.TrimSpace(level))
		}
		c.Logging.StepLevels = normalized
	}
}

// NormalizeAudioFormat lowercases an audio format name and strips a leading dot.
func NormalizeAudioFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}

// NormalizeLanguage maps "auto" and empty hints to no override and converts
// recognized names or ISO 639-2 codes to ISO 639-1.
func NormalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	if code := langpkg.ToISO2(lang); code != "" {
		return code
	}
	return strings.ToLower(lang)
}
