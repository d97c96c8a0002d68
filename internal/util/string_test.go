// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "testing"

func TestCleanDisplayText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "hello there", "hello there"},
		{"tab expands then collapses", "a\tb", "a b"},
		{"triple newline collapses", "a\n\n\n\nb", "a\n\nb"},
		{"double newline preserved", "a\n\nb", "a\n\nb"},
		{"space runs collapse", "a    b", "a b"},
		{"trailing whitespace trimmed", "hello   \n\n", "hello"},
		{"mixed", "one\t\ttwo\n\n\n\nthree  four  ", "one two\n\nthree four"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDisplayText(tt.input); got != tt.want {
				t.Errorf("CleanDisplayText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanDisplayTextIdempotent(t *testing.T) {
	input := "a\tb\n\n\n\nc   d   "
	once := CleanDisplayText(input)
	twice := CleanDisplayText(once)
	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestSanitizeForSpeech(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  hello  ", "hello"},
		{"strips emoji", "nice \U0001F600 day", "nice  day"},
		{"strips tags", "pause <break time=\"1s\"/> here", "pause  here"},
		{"keeps bmp text", "café über", "café über"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForSpeech(tt.input); got != tt.want {
				t.Errorf("SanitizeForSpeech(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("hello world", 8); got != "hello..." {
		t.Errorf("TruncateRunes = %q, want %q", got, "hello...")
	}
	if got := TruncateRunes("short", 10); got != "short" {
		t.Errorf("TruncateRunes = %q, want %q", got, "short")
	}
	if got := TruncateRunes("こんにちは世界", 5); got != "こん..." {
		t.Errorf("TruncateRunes CJK = %q", got)
	}
}
