package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ytscribe/internal/extract"
	"ytscribe/internal/services"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var input, outdir, audioFormat string
	var copyAudio bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the audio track of a media file to audio.<format>",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup()
			if err != nil {
				return err
			}
			dir, err := resolveOutdir(outdir, cfg)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("copy") {
				copyAudio = cfg.Extract.Copy
			}
			extractor := extract.New(cfg, logger)
			result, err := extractor.Extract(services.WithStep(cmd.Context(), "extract"), extract.Request{
				Input:     input,
				OutputDir: dir,
				Format:    resolveString(audioFormat, cfg.Extract.AudioFormat),
				Copy:      copyAudio,
			})
			if err != nil {
				return err
			}
			mode := "re-encoded"
			if result.Copied {
				mode = "stream copy"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Audio: %s (%s, %s)\n", result.AudioPath, mode, humanize.Bytes(uint64(max(result.SizeBytes, 0))))
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Media file to extract audio from")
	registerOutdir(cmd, &outdir)
	cmd.Flags().StringVar(&audioFormat, "audio-format", "", "Audio format (mp3, wav, m4a, flac, aac, opus); default from config")
	cmd.Flags().BoolVar(&copyAudio, "copy", false, "Stream-copy the audio track instead of re-encoding")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
