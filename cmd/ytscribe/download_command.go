package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
	"ytscribe/internal/download"
	"ytscribe/internal/services"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var url, outdir, mode string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a video and record its path in last_downloaded.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, ctx, url, outdir, func(ctx context.Context, cfg *config.Config, d *download.Downloader, req download.Request) (download.Result, error) {
				req.Mode = resolveString(mode, cfg.Download.Mode)
				return d.Download(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Video URL")
	registerOutdir(cmd, &outdir)
	cmd.Flags().StringVar(&mode, "mode", "", "Download mode (bestaudio, best, worst); default from config")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newDownloadAudioCommand(ctx *commandContext) *cobra.Command {
	var url, outdir, mode string

	cmd := &cobra.Command{
		Use:   "download-audio",
		Short: "Download only the audio track, converted to MP3",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, ctx, url, outdir, func(ctx context.Context, _ *config.Config, d *download.Downloader, req download.Request) (download.Result, error) {
				return d.DownloadAudio(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Video URL")
	registerOutdir(cmd, &outdir)
	// Audio-only downloads always select bestaudio; --mode is accepted so both
	// downloaders share one flag set.
	cmd.Flags().StringVar(&mode, "mode", "", "Accepted for compatibility with download; ignored")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

type downloadFunc func(context.Context, *config.Config, *download.Downloader, download.Request) (download.Result, error)

func runDownload(cmd *cobra.Command, ctx *commandContext, url, outdir string, fn downloadFunc) error {
	cfg, logger, err := ctx.setup()
	if err != nil {
		return err
	}
	dir, err := resolveOutdir(outdir, cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	display := newProgressDisplay(out)
	defer display.finish()

	stepCtx := services.WithStep(cmd.Context(), "download")
	downloader := download.New(cfg, logger).OnProgress(display.download)
	result, err := fn(stepCtx, cfg, downloader, download.Request{URL: url, OutputDir: dir})
	display.finish()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Downloaded: %s\n", result.MediaPath)
	fmt.Fprintf(out, "Marker: %s\n", result.MarkerPath)
	return nil
}
