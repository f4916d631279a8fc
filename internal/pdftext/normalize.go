package pdftext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const truncationNote = "\n\n[Text truncated from original length of %d characters]"

// Normalize collapses whitespace runs to a single space, drops ASCII control
// characters and trims the result. Invalid UTF-8 bytes are kept as they are.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			flushSpace(&b, &space)
			b.WriteByte(s[i])
			i++
			continue
		}
		i += size

		switch {
		case isCollapsible(r):
			space = true
		case isStrippedControl(r):
		default:
			flushSpace(&b, &space)
			b.WriteRune(r)
		}
	}
	return b.String()
}

// flushSpace emits a pending separator, never at the start of the output.
func flushSpace(b *strings.Builder, space *bool) {
	if *space && b.Len() > 0 {
		b.WriteByte(' ')
	}
	*space = false
}

func isCollapsible(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isStrippedControl(r rune) bool {
	return r <= 0x08 || r == 0x0B || r == 0x0C || (r >= 0x0E && r <= 0x1F) || r == 0x7F
}

// Truncate limits s to max characters. When it cuts, the result ends with a
// note giving the original length and still fits within max. A max of zero
// or less leaves s untouched.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	n := utf8.RuneCountInString(s)
	if n <= max {
		return s, false
	}

	note := fmt.Sprintf(truncationNote, n)
	keep := max - utf8.RuneCountInString(note)
	if keep <= 0 {
		return prefixRunes(s, max), true
	}
	return strings.TrimRight(prefixRunes(s, keep), " ") + note, true
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	i := 0
	for j := range s {
		if i == n {
			return s[:j]
		}
		i++
	}
	return s
}
