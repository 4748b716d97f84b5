// Package strcase converts Go identifiers to the snake_case keys used in
// JSON error payloads.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a string to snake_case, keeping initialisms together
// ("SessionToken" -> "session_token", "HTTPServer" -> "http_server").
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// wordBoundary reports whether the upper-case rune at i starts a new word.
func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	switch {
	case unicode.IsLower(prev), unicode.IsDigit(prev):
		return true
	case unicode.IsUpper(prev):
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	default:
		return false
	}
}
