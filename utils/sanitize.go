package utils

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = newSanitizer()

// UGC policy, keeping the language-* classes goldmark puts on fenced code.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
	return p
}

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
