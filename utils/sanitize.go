package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans rich-text HTML (post bodies) to prevent XSS attacks.
func Sanitize(input string) string {
	return richPolicy.Sanitize(input)
}

// SanitizeText strips every tag, for fields rendered as plain text.
// The result is unescaped so text survives repeated saves unchanged.
func SanitizeText(input string) string {
	return html.UnescapeString(plainPolicy.Sanitize(input))
}
