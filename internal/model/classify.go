package model

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize lowers the text and folds full-width CJK punctuation and
// latin forms to their narrow equivalents so that substring classification
// behaves the same for "ＡＣＣＥＰＴＥＤ" and "accepted".
func Normalize(s string) string {
	return strings.ToLower(width.Fold.String(strings.TrimSpace(s)))
}

// containsAny checks if s contains any of the given substrings.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
