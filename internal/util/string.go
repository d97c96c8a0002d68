// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the aira-tui application.
package util

import (
	"regexp"
	"strings"
)

// Display cleanup patterns. Compiled once; CleanDisplayText runs for every
// visible bubble on every render pass.
var (
	tripleNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace    = regexp.MustCompile(`[ ]{2,}`)
	angleTags     = regexp.MustCompile(`<[^>]*>`)
)

// CleanDisplayText normalizes message content for on-screen display.
// Tabs expand to four spaces, runs of three or more newlines collapse to
// two, runs of two or more spaces collapse to one, and trailing whitespace
// is trimmed. The stored content is never modified; this is purely a
// presentation transform applied at render time.
//
// The transform order matters: tab expansion happens first, so a tab
// collapses to a single space like the original client. The result is
// idempotent.
func CleanDisplayText(s string) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	s = tripleNewline.ReplaceAllString(s, "\n\n")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimRight(s, " \t\n\r")
}

// SanitizeForSpeech strips content a TTS engine cannot pronounce: runes
// outside the Basic Multilingual Plane (emoji and other symbols) and
// angle-bracketed tag sequences such as <break>. The sanitized text is
// only handed to the synthesizer; the conversation keeps the raw reply.
func SanitizeForSpeech(s string) string {
	s = strings.TrimSpace(s)
	s = angleTags.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r > 0xFFFF {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TruncateRunes truncates a string to a maximum number of runes (characters).
// This is safe for UTF-8 strings as it counts characters, not bytes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// FirstLine returns the first line of a string, used for history previews.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
