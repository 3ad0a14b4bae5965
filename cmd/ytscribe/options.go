package main

import (
	"strings"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
)

// transcribeFlags are shared by `run` and `transcribe`.
type transcribeFlags struct {
	model      string
	language   string
	vad        bool
	timestamps bool
}

func (f *transcribeFlags) register(cmd *cobra.Command, modelFlag string) {
	cmd.Flags().StringVar(&f.model, modelFlag, "", "Model size (tiny, base, small, medium, large-v3); default from config")
	cmd.Flags().StringVar(&f.language, "language", "", "Language hint such as en or French; omit to autodetect")
	cmd.Flags().BoolVar(&f.vad, "vad", false, "Skip silence by transcribing detected speech spans only")
	cmd.Flags().BoolVar(&f.timestamps, "timestamps", false, "Also write transcript_segments.json")
}

// resolve applies config defaults for flags the user did not set.
func (f *transcribeFlags) resolve(cmd *cobra.Command, cfg *config.Config) transcribeFlags {
	out := *f
	if strings.TrimSpace(out.model) == "" {
		out.model = cfg.Transcription.Model
	}
	if !cmd.Flags().Changed("language") {
		out.language = cfg.Transcription.Language
	}
	if !cmd.Flags().Changed("vad") {
		out.vad = cfg.Transcription.VAD
	}
	if !cmd.Flags().Changed("timestamps") {
		out.timestamps = cfg.Transcription.Timestamps
	}
	return out
}

func registerOutdir(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "outdir", "", "Output directory (default from config, \"outputs\")")
}

func resolveOutdir(flag string, cfg *config.Config) (string, error) {
	if strings.TrimSpace(flag) == "" {
		return cfg.Paths.OutputDir, nil
	}
	return config.ExpandPath(strings.TrimSpace(flag))
}

func resolveString(flag, fallback string) string {
	if value := strings.TrimSpace(flag); value != "" {
		return value
	}
	return fallback
}
