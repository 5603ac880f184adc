// Package sanitizer normalizes free-text input before it is validated or
// persisted.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string, collapses runs of whitespace to a
// single space, and drops control characters.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// dropped
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

// SanitizePurpose normalizes the free-text reason attached to a booking.
func SanitizePurpose(purpose string) string {
	return TrimAndNormalize(purpose)
}
