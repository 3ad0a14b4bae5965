package handoff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"ytscribe/internal/fileutil"
	"ytscribe/internal/textutil"
)

// Segment is one timestamped span of transcribed speech. Times are seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// NormalizeSegments returns a cleaned copy of segs: times rounded to the
// millisecond with negatives clamped to zero, end never before start, text
// normalized, and entries stably ordered by start. Segments whose text is
// blank are kept with empty text.
func NormalizeSegments(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		text := textutil.NormalizeTranscript(seg.Text)
		start := roundMillis(seg.Start)
		end := roundMillis(seg.End)
		if end < start {
			end = start
		}
		out = append(out, Segment{Start: start, End: end, Text: text})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// OffsetSegments shifts every segment by offset seconds.
func OffsetSegments(segs []Segment, offset float64) []Segment {
	out := make([]Segment, len(segs))
	for i, seg := range segs {
		out[i] = Segment{Start: seg.Start + offset, End: seg.End + offset, Text: seg.Text}
	}
	return out
}

func roundMillis(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return math.Round(v*1000) / 1000
}

// WriteTranscript writes the normalized transcript text plus a trailing
// newline to outDir. The file is written even when text is empty.
func WriteTranscript(outDir, text string) (string, error) {
	path := TranscriptPath(outDir)
	body := textutil.NormalizeTranscript(text) + "\n"
	if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// WriteSegments normalizes segs and writes them as an indented JSON array.
// An empty input produces "[]".
func WriteSegments(outDir string, segs []Segment) (string, error) {
	normalized := NormalizeSegments(segs)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("encode segments: %w", err)
	}
	path := SegmentsPath(outDir)
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write segments: %w", err)
	}
	return path, nil
}

// ReadSegments loads a segment list previously written by WriteSegments.
func ReadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	var segs []Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return segs, nil
}
