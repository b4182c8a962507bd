// Package textnorm canonicalizes source strings so that cosmetic differences
// in whitespace and ellipses do not prevent a translation from matching.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var multiDot = regexp.MustCompile(`\.{3,}`)

// Normalize returns the lookup form of s: non-breaking spaces become
// regular spaces, runs of two or more whitespace characters collapse to
// one space, the result is trimmed, and runs of three or more periods
// collapse to exactly "...".
//
// Whitespace is any Unicode white space plus the ASCII separators
// U+001C..U+001F. A lone whitespace character other than NBSP is kept.
//
// The normalized form is only used as a lookup key; it is never written
// back into a document.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = collapseSpace(s)
	s = strings.TrimFunc(s, isSpace)
	return multiDot.ReplaceAllString(s, "...")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// collapseSpace replaces every run of two or more whitespace runes with a
// single space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runStart, runLen := 0, 0
	flush := func(end int) {
		switch {
		case runLen == 1:
			b.WriteString(s[runStart:end])
		case runLen > 1:
			b.WriteByte(' ')
		}
		runLen = 0
	}

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isSpace(r) {
			if runLen == 0 {
				runStart = i
			}
			runLen++
		} else {
			flush(i)
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	flush(len(s))
	return b.String()
}
