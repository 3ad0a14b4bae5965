package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"ytscribe/internal/services"
)

// Span is a stretch of audio, in seconds.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 { return s.End - s.Start }

const (
	// spanPadding widens each speech span so word onsets are not clipped.
	spanPadding = 0.1
	// minSpanSeconds drops blips too short to hold a word.
	minSpanSeconds = 0.25
)

var (
	silenceStartLine = regexp.MustCompile(`silence_start:\s*(-?[0-9.]+)`)
	silenceEndLine   = regexp.MustCompile(`silence_end:\s*(-?[0-9.]+)`)
)

// SilenceDetector finds speech spans with ffmpeg's silencedetect filter.
type SilenceDetector struct {
	ffmpegBinary string
	noiseDB      float64
	minSilence   float64
	run          services.OutputRunner
}

// NewSilenceDetector returns a detector treating audio below noiseDB for at
// least minSilence seconds as silence.
func NewSilenceDetector(ffmpegBinary string, noiseDB, minSilence float64) *SilenceDetector {
	return &SilenceDetector{
		ffmpegBinary: ffmpegBinary,
		noiseDB:      noiseDB,
		minSilence:   minSilence,
		run:          services.CommandOutput,
	}
}

// WithRunner sets a custom command runner (for testing).
func (d *SilenceDetector) WithRunner(runner services.OutputRunner) *SilenceDetector {
	if runner != nil {
		d.run = runner
	}
	return d
}

// SpeechSpans returns the non-silent spans of audio. duration bounds the
// last span; when it is unknown (<= 0) no spans are returned and callers
// transcribe the whole file.
func (d *SilenceDetector) SpeechSpans(ctx context.Context, audio string, duration float64) ([]Span, error) {
	args := []string{
		"-hide_banner",
		"-nostats",
		"-i", audio,
		"-af", fmt.Sprintf("silencedetect=noise=%gdB:d=%g", d.noiseDB, d.minSilence),
		"-f", "null",
		"-",
	}
	output, err := d.run(ctx, d.ffmpegBinary, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg silencedetect: %w", err)
	}
	return speechSpans(parseSilences(output), duration), nil
}

// parseSilences extracts silence intervals from silencedetect output. A
// trailing silence_start without an end yields an open interval (End = +Inf).
func parseSilences(output []byte) []Span {
	var (
		silences []Span
		open     = math.NaN()
	)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if m := silenceStartLine.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				open = math.Max(v, 0)
			}
			continue
		}
		if m := silenceEndLine.FindStringSubmatch(line); m != nil && !math.IsNaN(open) {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				silences = append(silences, Span{Start: open, End: v})
			}
			open = math.NaN()
		}
	}
	if !math.IsNaN(open) {
		silences = append(silences, Span{Start: open, End: math.Inf(1)})
	}
	return silences
}

// speechSpans returns the complement of silences over [0, duration], padded,
// merged where padding overlaps, and with short blips removed.
func speechSpans(silences []Span, duration float64) []Span {
	if math.IsNaN(duration) || duration <= 0 {
		return nil
	}

	var spans []Span
	cursor := 0.0
	for _, s := range silences {
		if s.Start > cursor {
			spans = appendSpan(spans, cursor, math.Min(s.Start, duration), duration)
		}
		if s.End > cursor {
			cursor = s.End
		}
		if cursor >= duration {
			break
		}
	}
	if cursor < duration {
		spans = appendSpan(spans, cursor, duration, duration)
	}
	return spans
}

func appendSpan(spans []Span, start, end, duration float64) []Span {
	if end-start < minSpanSeconds {
		return spans
	}
	start = math.Max(0, start-spanPadding)
	end = math.Min(duration, end+spanPadding)
	if n := len(spans); n > 0 && start <= spans[n-1].End {
		spans[n-1].End = end
		return spans
	}
	return append(spans, Span{Start: start, End: end})
}

// extractSpanArgs cuts one span to a mono 16 kHz WAV.
func extractSpanArgs(source string, span Span, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", span.Start),
		"-t", fmt.Sprintf("%.3f", span.Duration()),
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}
