package pdftext

import (
	"unicode/utf8"
)

// Classifier decides whether a candidate string looks like language or like
// byte noise. It is a noise filter, not a language detector.
type Classifier struct {
	MinLength      int
	MinLetterRatio float64
}

// IsReadable reports whether s has enough ASCII letters and at least one
// run of two or more consecutive letters.
func (c Classifier) IsReadable(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < c.MinLength || n == 0 {
		return false
	}

	letters, wordRuns, run := 0, 0, 0
	for _, r := range s {
		if !isASCIILetter(r) {
			run = 0
			continue
		}
		letters++
		run++
		if run == 2 {
			wordRuns++
		}
	}

	return float64(letters)/float64(n) > c.MinLetterRatio && wordRuns > 0
}

// IsReadable classifies s with the default thresholds.
func IsReadable(s string) bool {
	return DefaultOptions().classifier().IsReadable(s)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
