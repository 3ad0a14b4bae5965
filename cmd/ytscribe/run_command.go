package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/download"
	"ytscribe/internal/extract"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/transcribe"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		url           string
		outdir        string
		mode          string
		audioFormat   string
		copyAudio     bool
		skipPreflight bool
		tf            transcribeFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download, extract audio, and transcribe in one go",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dir, err := resolveOutdir(outdir, cfg)
			if err != nil {
				return err
			}
			cfg.Paths.OutputDir = dir
			resolved := tf.resolve(cmd, cfg)
			copyFlag := copyAudio
			if !cmd.Flags().Changed("copy") {
				copyFlag = cfg.Extract.Copy
			}

			display := newProgressDisplay(out)
			defer display.finish()

			downloader := download.New(cfg, logger).OnProgress(display.download)
			extractor := extract.New(cfg, logger)
			transcriber, err := transcribe.New(cfg, logger)
			if err != nil {
				return err
			}
			transcriber.OnProgress(display.transcribe)

			runner := pipeline.New(cfg, logger, downloader, extractor, transcriber).OnStep(func(step pipeline.Step) {
				display.finish()
				fmt.Fprintf(out, "[%d/%d] %s…\n", step.Index, step.Total, step.Label)
			})
			result, err := runner.Run(cmd.Context(), pipeline.Request{
				URL:           url,
				OutputDir:     dir,
				Mode:          resolveString(mode, cfg.Download.Mode),
				AudioFormat:   resolveString(audioFormat, cfg.Extract.AudioFormat),
				Copy:          copyFlag,
				Model:         resolved.model,
				Language:      resolved.language,
				VAD:           resolved.vad,
				Timestamps:    resolved.timestamps,
				SkipPreflight: skipPreflight,
			})
			display.finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Done. Transcript: %s\n", result.TranscriptPath)
			if result.SegmentsPath != "" {
				fmt.Fprintf(out, "Segments: %s\n", result.SegmentsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Video URL")
	registerOutdir(cmd, &outdir)
	cmd.Flags().StringVar(&mode, "mode", "", "Download mode (bestaudio, best, worst); default from config")
	cmd.Flags().StringVar(&audioFormat, "audio-format", "", "Audio format (mp3, wav, m4a, flac, aac, opus); default from config")
	cmd.Flags().BoolVar(&copyAudio, "copy", false, "Stream-copy the audio track instead of re-encoding")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip the tool availability checks")
	tf.register(cmd, "whisper-model")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
