// Package sanitize strips markup from citizen-supplied free text before it is stored or mirrored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer interface {
	// Text removes every HTML element and trims surrounding whitespace.
	Text(s string) string
}

type strictSanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() Sanitizer {
	return &strictSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *strictSanitizer) Text(in string) string {
	if in == "" {
		return ""
	}
	// StrictPolicy escapes what it keeps; stored text is plain, so unescape once.
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
