package ngram

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a line of text: it applies Unicode NFC composition,
// turns embedded line breaks and runs of whitespace into a single space, and
// trims leading and trailing whitespace. It is pure and idempotent, and is
// applied identically to training lines and prediction prefixes.
func Normalize(raw string) string {
	s := norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			// Only emit a separator once something precedes it.
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizePrefix normalizes a prediction prefix. It behaves like Normalize
// except that a prefix ending in whitespace keeps one trailing space, since
// the character being predicted follows that space.
func NormalizePrefix(raw string) string {
	s := Normalize(raw)
	if s == "" {
		return s
	}
	trimmed := strings.TrimRightFunc(raw, unicode.IsSpace)
	if len(trimmed) < len(raw) {
		return s + " "
	}
	return s
}

// isLineTerminator reports whether r ends a line. Line terminators are never
// counted as next characters and never predicted.
func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r'
}
