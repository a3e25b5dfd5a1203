package utils

import "github.com/microcosm-cc/bluemonday"

// Check-in notes are rendered as plain text, so strip markup entirely.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans user-supplied note content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
