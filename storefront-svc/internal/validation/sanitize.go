package validation

import (
	"regexp"
	"strings"
)

const maxTextRunes = 1000

var (
	angleBrackets  = regexp.MustCompile(`[<>]`)
	scriptScheme   = regexp.MustCompile(`(?i)javascript:`)
	inlineHandlers = regexp.MustCompile(`(?i)on\w+=`)
)

// Sanitize strips markup and script fragments, trims, and caps the result at
// 1000 runes.
func Sanitize(s string) string {
	s = angleBrackets.ReplaceAllString(s, "")
	s = scriptScheme.ReplaceAllString(s, "")
	s = inlineHandlers.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxTextRunes {
		s = string(runes[:maxTextRunes])
	}
	return s
}
