package language

import (
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"PL", "pl"},
		{"xx", "xx"},
		// 3-letter codes convert
		{"pol", "pl"},
		{"eng", "en"},
		{"fre", "fr"},
		{"cze", "cs"},
		{"ukr", "uk"},
		// Word forms
		{"polish", "pl"},
		{"Polski", "pl"},
		{"Deutsch", "de"},
		{"français", "fr"},
		// Unknown or empty
		{"", ""},
		{"   ", ""},
		{"klingon", ""},
		{"xyz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("pl") || !Known("polish") {
		t.Fatal("expected polish to be known")
	}
	if Known("xx") {
		t.Fatal("expected xx to be unknown")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "Autodetect"},
		{"pl", "Polish"},
		{"ger", "German"},
		{"xx", "XX"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
