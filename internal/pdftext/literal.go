package pdftext

import (
	"strings"
)

// matchParen returns the index of the ')' closing the literal opened at
// b[open], or -1 if none is found within limit bytes. A backslash escapes
// the byte after it, so \( and \) never change the depth.
func matchParen(b []byte, open, limit int) int {
	depth := 1
	for i := open + 1; i < len(b); i++ {
		if i-open > limit {
			return -1
		}
		switch b[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// unescapeLiteral decodes the string-literal escapes \n \r \t \( \) and \\.
// Any other backslash sequence is left as written.
func unescapeLiteral(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
