// Package pdftext recovers plain text from raw PDF bytes without a PDF
// object model. It scans content-stream literals with three strategies of
// decreasing precision and always answers with a result or a descriptive
// error, never a panic.
package pdftext

import (
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/phuslu/log"
)

// Strategy names the scanner that produced a result.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyStructured
	StrategyPattern
	StrategyRaw
)

func (s Strategy) String() string {
	switch s {
	case StrategyStructured:
		return "structured"
	case StrategyPattern:
		return "pattern"
	case StrategyRaw:
		return "raw"
	default:
		return "none"
	}
}

// MarshalText lets JSON and YAML encoders print the strategy name.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is a successful extraction.
type Result struct {
	// Text is normalized, non-empty and possibly truncated.
	Text string
	// Strategy is the scanner whose output was used.
	Strategy Strategy
	// OriginalLength is the character count before truncation.
	OriginalLength int
	// Truncated reports whether Text was cut to the configured cap.
	Truncated bool
}

type scanner interface {
	strategy() Strategy
	extract(buf []byte) string
}

// Extractor runs the strategy cascade. It holds no per-call state and is
// safe for concurrent use.
type Extractor struct {
	opts     Options
	scanners []scanner
	log      *log.Logger
}

// New creates an Extractor. A nil logger discards all events.
func New(opts Options, logger *log.Logger) (*Extractor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}

	classifier := opts.classifier()
	return &Extractor{
		opts: opts,
		scanners: []scanner{
			&structuredScanner{searchLimit: opts.LiteralSearchLimit, log: logger},
			&patternScanner{window: opts.PatternWindow, classifier: classifier, log: logger},
			&rawScanner{
				minRun:       opts.MinRunLength,
				minPrintable: opts.MinRunPrintable,
				interval:     opts.NormalizeInterval,
				classifier:   classifier,
				log:          logger,
			},
		},
		log: logger,
	}, nil
}

// Options returns the options the Extractor was built with.
func (e *Extractor) Options() Options {
	return e.opts
}

// Parse extracts text from a complete PDF file held in buf. buf is never
// modified. Failures are returned as one of the package's Err values or an
// *InternalError; use ReasonOf to classify them.
func (e *Extractor) Parse(buf []byte) (res Result, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &InternalError{Detail: fmt.Sprint(r)}
			e.log.Error().Int("bytes", len(buf)).Str("detail", fmt.Sprint(r)).Msg("pdf extraction panicked")
		}
	}()

	if err := ValidateSignature(buf); err != nil {
		e.log.Warn().Int("bytes", len(buf)).Str("reason", string(ReasonOf(err))).Msg("rejected input")
		return Result{}, err
	}

	text, strategy := e.cascade(buf)
	if strategy == StrategyNone {
		e.log.Warn().Int("bytes", len(buf)).Dur("took", time.Since(start)).Msg("no strategy produced text")
		return Result{}, ErrNoExtractableText
	}

	original := utf8.RuneCountInString(text)
	text, truncated := Truncate(text, e.opts.MaxTextLength)

	e.log.Info().
		Int("bytes", len(buf)).
		Str("strategy", strategy.String()).
		Int("chars", original).
		Bool("truncated", truncated).
		Dur("took", time.Since(start)).
		Msg("extracted pdf text")

	return Result{
		Text:           text,
		Strategy:       strategy,
		OriginalLength: original,
		Truncated:      truncated,
	}, nil
}

// cascade tries each scanner in order and returns the first normalized,
// non-empty output.
func (e *Extractor) cascade(buf []byte) (string, Strategy) {
	for _, s := range e.scanners {
		text := Normalize(e.run(s, buf))
		if text != "" {
			return text, s.strategy()
		}
		e.log.Debug().Str("strategy", s.strategy().String()).Msg("strategy produced no text")
	}
	return "", StrategyNone
}

func discardLogger() *log.Logger {
	return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}
}

// run isolates a single strategy so that a fault in one degrades to the next.
func (e *Extractor) run(s scanner, buf []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().Str("strategy", s.strategy().String()).Str("detail", fmt.Sprint(r)).Msg("strategy failed")
			text = ""
		}
	}()
	return s.extract(buf)
}
