package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if err := ValidateDownloadMode(c.Download.Mode); err != nil {
		return fmt.Errorf("download.mode: %w", err)
	}
	if strings.TrimSpace(c.Download.AudioFormat) == "" {
		return errors.New("download.audio_format must be set")
	}
	return nil
}

func (c *Config) validateExtract() error {
	if err := ValidateAudioFormat(c.Extract.AudioFormat); err != nil {
		return fmt.Errorf("extract.audio_format: %w", err)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	switch t.Engine {
	case EngineWhisper, EngineWhisperX:
	default:
		return fmt.Errorf("transcription.engine: unsupported value %q (expected %s or %s)", t.Engine, EngineWhisper, EngineWhisperX)
	}
	if t.BeamSize < 1 {
		return errors.New("transcription.beam_size must be positive")
	}
	if t.BestOf < 1 {
		return errors.New("transcription.best_of must be positive")
	}
	if t.VADNoiseDB >= 0 {
		return errors.New("transcription.vad_noise_db must be negative (dBFS)")
	}
	if t.VADMinSilence <= 0 {
		return errors.New("transcription.vad_min_silence must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	for step, level := range c.Logging.StepLevels {
		if !validLevel(level) {
			return fmt.Errorf("logging.step_levels.%s: unsupported level %q", step, level)
		}
	}
	return nil
}

// ValidateAudioFormat reports whether format is one of the supported extraction targets.
func ValidateAudioFormat(format string) error {
	if slices.Contains(AudioFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported audio format %q (choose from %s)", format, strings.Join(AudioFormats, ", "))
}

// ValidateDownloadMode reports whether mode is a recognized downloader mode.
func ValidateDownloadMode(mode string) error {
	if slices.Contains(DownloadModes, mode) {
		return nil
	}
	return fmt.Errorf("unsupported download mode %q (choose from %s)", mode, strings.Join(DownloadModes, ", "))
}

func validLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
