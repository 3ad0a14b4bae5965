package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"

	"ytscribe/internal/download"
	"ytscribe/internal/logging"
)

// progressDisplay renders step progress to stdout: a live bar on a
// terminal, otherwise one line per 5% bucket.
type progressDisplay struct {
	out         io.Writer
	interactive bool
	bar         *progressbar.ProgressBar
	barKind     string
	sampler     *logging.ProgressSampler
}

func newProgressDisplay(out io.Writer) *progressDisplay {
	return &progressDisplay{
		out:         out,
		interactive: shouldColorize(out),
		sampler:     logging.NewProgressSampler(0),
	}
}

// download reports yt-dlp progress in bytes.
func (p *progressDisplay) download(pr download.Progress) {
	if p.interactive {
		if pr.TotalBytes <= 0 {
			return
		}
		p.ensureBar("download", pr.TotalBytes, "Downloading", true)
		_ = p.bar.Set64(pr.DownloadedBytes)
		return
	}
	if p.sampler.ShouldLog(pr.Percent, "download") && pr.Percent >= 0 {
		fmt.Fprintf(p.out, "      download %s\n", progressLine(pr.Percent, pr.ETA))
	}
}

// transcribe reports the transcribed position in seconds of audio.
func (p *progressDisplay) transcribe(position, total float64) {
	if total <= 0 {
		return
	}
	if p.interactive {
		p.ensureBar("transcribe", int64(math.Ceil(total)), "Transcribing", false)
		_ = p.bar.Set64(int64(position))
		return
	}
	percent := position / total * 100
	if p.sampler.ShouldLog(percent, "transcribe") {
		fmt.Fprintf(p.out, "      transcribe %s\n", progressLine(percent, 0))
	}
}

func (p *progressDisplay) ensureBar(kind string, max int64, description string, bytes bool) {
	if p.bar != nil && p.barKind == kind {
		if p.bar.GetMax64() != max {
			p.bar.ChangeMax64(max)
		}
		return
	}
	p.finish()
	p.barKind = kind
	p.bar = progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("      "+description),
		progressbar.OptionShowBytes(bytes),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
}

// finish closes any live bar and restarts line sampling.
func (p *progressDisplay) finish() {
	p.sampler.Reset()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
		p.barKind = ""
	}
}

func progressLine(percent float64, eta time.Duration) string {
	line := fmt.Sprintf("%3.0f%%", math.Min(percent, 100))
	if eta > 0 {
		line += fmt.Sprintf(" (eta %s)", eta.Round(time.Second))
	}
	return line
}
