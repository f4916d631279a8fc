package pdftext

import (
	"strings"

	"github.com/phuslu/log"
)

// rawScanner is the last resort: it reads the buffer as latin1 and keeps
// runs of printable ASCII that the classifier accepts.
type rawScanner struct {
	minRun       int
	minPrintable int
	interval     int
	classifier   Classifier
	log          *log.Logger
}

func (s *rawScanner) strategy() Strategy { return StrategyRaw }

func (s *rawScanner) extract(buf []byte) string {
	var out strings.Builder
	run := make([]byte, 0, s.minRun+1)
	printable := 0
	// continuing is set once a chunk of the current run has been accepted;
	// the rest of that run is then joined without a separator.
	continuing := false

	qualifies := func() bool {
		return len(run) > s.minRun && printable > s.minPrintable
	}
	reset := func() {
		run = run[:0]
		printable = 0
	}
	closeRun := func() {
		switch {
		case continuing:
			out.Write(run)
			out.WriteByte(' ')
		case qualifies() && s.classifier.IsReadable(string(run)):
			out.Write(run)
			out.WriteByte(' ')
		}
		reset()
		continuing = false
	}

	for i, c := range buf {
		if i > 0 && i%s.interval == 0 {
			s.compact(&out, i)
		}

		switch {
		case c >= 0x20 && c <= 0x7E:
			run = append(run, c)
			printable++
		case c == '\t' || c == '\n' || c == '\r':
			run = append(run, ' ')
		default:
			closeRun()
			continue
		}

		if !qualifies() {
			continue
		}
		if s.classifier.IsReadable(string(run)) {
			out.Write(run)
			continuing = true
		} else if continuing {
			out.WriteByte(' ')
			continuing = false
		}
		reset()
	}
	closeRun()

	return out.String()
}

// compact normalizes the accumulator in place to bound its growth on large
// inputs, keeping a trailing separator if there was one.
func (s *rawScanner) compact(out *strings.Builder, offset int) {
	if out.Len() == 0 {
		return
	}
	before := out.Len()
	current := out.String()
	trailing := strings.HasSuffix(current, " ")

	compacted := Normalize(current)
	out.Reset()
	out.WriteString(compacted)
	if trailing && compacted != "" {
		out.WriteByte(' ')
	}

	s.log.Debug().Int("offset", offset).Int("before", before).Int("after", out.Len()).Msg("raw scan compacted accumulator")
}
