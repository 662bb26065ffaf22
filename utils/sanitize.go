package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richText = bluemonday.UGCPolicy()

// SanitizeHTML keeps user-generated markup such as links and emphasis and drops scripts.
// Plain text without tags is returned trimmed but otherwise as sent.
func SanitizeHTML(input string) string {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "<") {
		return input
	}
	return strings.TrimSpace(richText.Sanitize(input))
}
