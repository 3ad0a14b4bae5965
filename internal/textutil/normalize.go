package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTranscript converts text to NFC, collapses whitespace runs to a
// single space and trims the ends. Line breaks are treated as whitespace.
func NormalizeTranscript(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// JoinSegments concatenates normalized segment texts with single spaces,
// skipping empty entries.
func JoinSegments(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, text := range texts {
		if cleaned := NormalizeTranscript(text); cleaned != "" {
			parts = append(parts, cleaned)
		}
	}
	return strings.Join(parts, " ")
}
