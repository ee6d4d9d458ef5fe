// Package text provides helpers for turning provider article bodies into
// readable plain text: rune counting, excerpts, HTML stripping and reading
// time estimates.
package text

import (
	"strings"
	"unicode/utf8"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// Multi-byte characters such as Japanese text or emoji count as one each.
//
// Examples:
//
//	CountRunes("hello")      // returns 5
//	CountRunes("こんにちは")  // returns 5
//	CountRunes("")           // returns 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Excerpt shortens text to at most maxRunes runes, cutting at the last word
// boundary and appending an ellipsis when anything was removed.
func Excerpt(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 || CountRunes(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndexAny(cut, " \t\n"); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
