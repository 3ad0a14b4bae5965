package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/services"
	"ytscribe/internal/transcribe"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var audio, outdir string
	var tf transcribeFlags

	cmd := &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe an audio file to transcript.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			dir, err := resolveOutdir(outdir, cfg)
			if err != nil {
				return err
			}
			resolved := tf.resolve(cmd, cfg)
			out := cmd.OutOrStdout()
			display := newProgressDisplay(out)
			defer display.finish()

			transcriber, err := transcribe.New(cfg, logger)
			if err != nil {
				return err
			}
			transcriber.OnProgress(display.transcribe)
			result, err := transcriber.Transcribe(services.WithStep(cmd.Context(), "transcribe"), transcribe.Request{
				Audio:      audio,
				OutputDir:  dir,
				Model:      resolved.model,
				Language:   resolved.language,
				VAD:        resolved.vad,
				Timestamps: resolved.timestamps,
			})
			display.finish()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Transcript: %s\n", result.TranscriptPath)
			if result.SegmentsPath != "" {
				fmt.Fprintf(out, "Segments: %s\n", result.SegmentsPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&audio, "audio", "", "Audio file to transcribe")
	registerOutdir(cmd, &outdir)
	tf.register(cmd, "model")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}
