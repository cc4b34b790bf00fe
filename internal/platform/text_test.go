package platform

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "My Video", "My Video"},
		{"slashes and colons", "a/b:c*d?", "a b c d"},
		{"underscore runs collapse", "a__b  _ c", "a b c"},
		{"brackets kept", "Clip [HD] (2024)", "Clip [HD] (2024)"},
		{"unicode letters kept", "Видео 日本語", "Видео 日本語"},
		{"trailing dots stripped", "clip...", "clip"},
		{"surrounding whitespace", "  clip  ", "clip"},
		{"leading underscore", "_clip", "clip"},
		{"empty", "", FallbackFilename},
		{"only invalid", "???", FallbackFilename},
		{"emoji replaced", "party 🎉 time", "party time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename_Truncates(t *testing.T) {
	got := SanitizeFilename(strings.Repeat("é", 300))
	assert.Equal(t, MaxFilenameRunes, utf8.RuneCountInString(got))
}

func TestSanitizeFilename_NFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Caf\u00e9", SanitizeFilename(decomposed))
}

func TestSanitizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  ",
		"My Vacation Video · 1.6K views",
		"a/b\\c|d<e>f",
		"_ _ _x_ _",
		"...hidden...",
		"Café au lait",
		strings.Repeat("ab_", 100) + ".",
		"tab\tnew\nline",
		"(1) [2] -3- .4.",
	}
	for _, in := range inputs {
		once := SanitizeFilename(in)
		assert.Equal(t, once, SanitizeFilename(once), "input %q", in)
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"counters removed", "My Vacation Video · 1.6K views · 39 reactions", "My Vacation Video"},
		{"pipe separators", "Cooking | 12 comments | 3 shares", "Cooking"},
		{"case insensitive", "Song · 2M VIEWS", "Song"},
		{"comma decimal", "Match · 1,2K likes", "Match"},
		{"no counters", "Just a title", "Just a title"},
		{"middle counter", "Part 1 · 10 views · Part 2", "Part 1 · Part 2"},
		{"only counters", "10 views · 5 likes", "10 views · 5 likes"},
		{"empty", "", DefaultTitlePlaceholder},
		{"blank", "   ", DefaultTitlePlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input, DefaultTitlePlaceholder); got != tt.expected {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
