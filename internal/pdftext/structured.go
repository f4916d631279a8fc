package pdftext

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/phuslu/log"
)

var (
	beginText = []byte("BT")
	endText   = []byte("ET")
)

// structuredScanner pulls string literals out of BT ... ET text objects.
// Hits here are trusted, so nothing is classified.
type structuredScanner struct {
	searchLimit int
	log         *log.Logger
}

func (s *structuredScanner) strategy() Strategy { return StrategyStructured }

func (s *structuredScanner) extract(buf []byte) string {
	var out strings.Builder
	skipped := 0

	for pos := 0; pos < len(buf); {
		bt := bytes.Index(buf[pos:], beginText)
		if bt < 0 {
			break
		}
		bt += pos

		et := bytes.Index(buf[bt+len(beginText):], endText)
		if et < 0 {
			// A dangling BT ends the scan.
			break
		}
		et += bt + len(beginText)

		skipped += s.scanTextObject(buf[bt+len(beginText):et], &out)
		pos = et + len(endText)
	}

	if skipped > 0 {
		s.log.Debug().Int("skipped_literals", skipped).Msg("structured scan skipped literals that were not valid UTF-8")
	}
	return out.String()
}

// scanTextObject appends every literal found in obj to out and returns how
// many literals were dropped for invalid UTF-8.
func (s *structuredScanner) scanTextObject(obj []byte, out *strings.Builder) int {
	skipped := 0
	for i := 0; i < len(obj); {
		open := bytes.IndexByte(obj[i:], '(')
		if open < 0 {
			break
		}
		open += i

		end := matchParen(obj, open, s.searchLimit)
		if end < 0 {
			i = open + 1
			continue
		}
		i = end + 1

		raw := obj[open+1 : end]
		if !utf8.Valid(raw) {
			skipped++
			continue
		}
		text := unescapeLiteral(string(raw))
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.WriteString(text)
		out.WriteByte(' ')
	}
	return skipped
}
