// Package vehicle normalizes spoken vehicle registration numbers into the
// canonical uppercase alphanumeric form used as the booking key.
package vehicle

import (
	"regexp"
	"strings"
)

// MinLength is the shortest normalized value accepted as a plausible
// registration number. Shorter results trigger a re-ask.
const MinLength = 6

// digitWords are filler words speech recognition produces for digits.
// They are removed, not converted: "PB ten zero one" becomes "PB" and the
// caller re-asks until the recognizer yields the actual characters.
var digitWords = regexp.MustCompile(`\b(?i:zero|one|two|three|four|five|six|seven|eight|nine|ten|oh)\b`)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// Normalize converts a spoken or typed vehicle number to clean form,
// e.g. "pb 12 ab-1234" -> "PB12AB1234". The result may be empty.
func Normalize(text string) string {
	cleaned := digitWords.ReplaceAllString(text, "")
	cleaned = strings.ToUpper(cleaned)
	return nonAlnum.ReplaceAllString(cleaned, "")
}

// Plausible reports whether a normalized vehicle number is long enough to
// be a real registration.
func Plausible(normalized string) bool {
	return len(normalized) >= MinLength
}
