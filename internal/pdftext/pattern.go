package pdftext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/phuslu/log"
)

var (
	// BT followed on the same line by a literal, with no '(' in between.
	// The body honors backslash escapes the same way anyLiteral does.
	textObjectLiteral = regexp.MustCompile(`BT[^(\r\n]*\(((?:[^\\()]|\\.)+)\)`)
	// Any parenthesised literal, allowing backslash escapes inside.
	anyLiteral = regexp.MustCompile(`\(([^\\()]+(?:\\.[^\\()]*)*)\)`)
)

// patternScanner regex-matches literals over a bounded UTF-8 window. It sees
// more noise than the structured scanner, so every hit is classified.
type patternScanner struct {
	window     int
	classifier Classifier
	log        *log.Logger
}

func (s *patternScanner) strategy() Strategy { return StrategyPattern }

func (s *patternScanner) extract(buf []byte) string {
	window := buf
	if len(window) > s.window {
		window = window[:s.window]
	}
	content := strings.ToValidUTF8(string(window), string(utf8.RuneError))

	var out strings.Builder
	taken := make(map[int]struct{})
	accepted, rejected := 0, 0

	add := func(raw string) {
		text := unescapeLiteral(raw)
		if strings.TrimSpace(text) == "" || !s.classifier.IsReadable(text) {
			rejected++
			return
		}
		accepted++
		out.WriteString(text)
		out.WriteByte(' ')
	}

	for _, m := range textObjectLiteral.FindAllStringSubmatchIndex(content, -1) {
		// m[2] is the first byte inside the parentheses.
		taken[m[2]-1] = struct{}{}
		add(content[m[2]:m[3]])
	}
	for _, m := range anyLiteral.FindAllStringSubmatchIndex(content, -1) {
		if _, dup := taken[m[0]]; dup {
			continue
		}
		add(content[m[2]:m[3]])
	}

	s.log.Debug().
		Int("window_bytes", len(window)).
		Int("accepted", accepted).
		Int("rejected", rejected).
		Msg("pattern scan finished")

	return stripNonPrintable(out.String())
}

// stripNonPrintable drops control characters other than tab/LF/CR, the
// 0x7F-0xFF range and replacement characters left by decoding.
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r >= 0x7F && r <= 0xFF, r == utf8.RuneError:
			return -1
		}
		return r
	}, s)
}
