package pdftext

import (
	"fmt"
)

// minTruncateLength is the smallest cap that still leaves room for the
// truncation note.
const minTruncateLength = 256

// Options configures the heuristics used by the extraction strategies.
type Options struct {
	// MaxTextLength caps the final text in characters. 0 disables truncation.
	MaxTextLength int `mapstructure:"max_text_length"`
	// MinReadableLength is the shortest string the classifier will accept.
	MinReadableLength int `mapstructure:"min_readable_length"`
	// MinLetterRatio is the letter ratio a readable string must exceed.
	MinLetterRatio float64 `mapstructure:"min_letter_ratio"`
	// MinRunLength is the run length the raw scanner must exceed before it
	// classifies a run.
	MinRunLength int `mapstructure:"min_run_length"`
	// MinRunPrintable is the printable count that run must exceed.
	MinRunPrintable int `mapstructure:"min_run_printable"`
	// PatternWindow is how many leading bytes the pattern scanner reads.
	PatternWindow int `mapstructure:"pattern_window_bytes"`
	// LiteralSearchLimit bounds the search for a closing parenthesis.
	LiteralSearchLimit int `mapstructure:"literal_search_limit"`
	// NormalizeInterval is how often (in bytes) the raw scanner compacts
	// its accumulator.
	NormalizeInterval int `mapstructure:"normalize_interval"`
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{
		MaxTextLength:      200000,
		MinReadableLength:  4,
		MinLetterRatio:     0.3,
		MinRunLength:       20,
		MinRunPrintable:    15,
		PatternWindow:      2 * 1024 * 1024,
		LiteralSearchLimit: 10000,
		NormalizeInterval:  500000,
	}
}

// Validate reports the first option that cannot work.
func (o Options) Validate() error {
	switch {
	case o.MaxTextLength < 0:
		return fmt.Errorf("%w: max_text_length must not be negative", ErrInvalidOptions)
	case o.MaxTextLength > 0 && o.MaxTextLength < minTruncateLength:
		return fmt.Errorf("%w: max_text_length must be 0 or at least %d", ErrInvalidOptions, minTruncateLength)
	case o.MinReadableLength <= 0:
		return fmt.Errorf("%w: min_readable_length must be greater than 0", ErrInvalidOptions)
	case o.MinLetterRatio < 0 || o.MinLetterRatio >= 1:
		return fmt.Errorf("%w: min_letter_ratio must be in [0, 1)", ErrInvalidOptions)
	case o.MinRunLength <= 0:
		return fmt.Errorf("%w: min_run_length must be greater than 0", ErrInvalidOptions)
	case o.MinRunPrintable < 0 || o.MinRunPrintable > o.MinRunLength:
		return fmt.Errorf("%w: min_run_printable must be between 0 and min_run_length", ErrInvalidOptions)
	case o.PatternWindow <= 0:
		return fmt.Errorf("%w: pattern_window_bytes must be greater than 0", ErrInvalidOptions)
	case o.LiteralSearchLimit <= 0:
		return fmt.Errorf("%w: literal_search_limit must be greater than 0", ErrInvalidOptions)
	case o.NormalizeInterval <= 0:
		return fmt.Errorf("%w: normalize_interval must be greater than 0", ErrInvalidOptions)
	}
	return nil
}

func (o Options) classifier() Classifier {
	return Classifier{MinLength: o.MinReadableLength, MinLetterRatio: o.MinLetterRatio}
}
