package textutil

import "testing"

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim", "  hello world  ", "hello world"},
		{"collapse", "hello \n\n\t world", "hello world"},
		{"nfc", "cafe\u0301", "caf\u00e9"},
		{"controls dropped", "a\x00b", "ab"},
		{"empty", " \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTranscript(tt.in); got != tt.want {
				t.Fatalf("NormalizeTranscript(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinSegments(t *testing.T) {
	got := JoinSegments([]string{" Hello", "", "  ", "world. "})
	if got != "Hello world." {
		t.Fatalf("JoinSegments = %q", got)
	}
}
