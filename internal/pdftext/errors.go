package pdftext

import (
	"errors"
)

// Failure reasons returned by Parse. Their messages are safe to show to an
// end user as-is.
var (
	// ErrEmptyBuffer is returned when no input bytes are provided.
	ErrEmptyBuffer = errors.New("no content to parse: empty file provided")
	// ErrBufferTooSmall is returned when the input cannot hold a PDF header.
	ErrBufferTooSmall = errors.New("file is too small to be a valid PDF")
	// ErrInvalidSignature is returned when the input does not start with %PDF-.
	ErrInvalidSignature = errors.New("this does not appear to be a valid PDF file")
	// ErrNoExtractableText is returned when every strategy came back empty.
	ErrNoExtractableText = errors.New("no text content could be extracted from this PDF; it may be scanned images or protected")
)

// ErrInvalidOptions is returned by New and Options.Validate.
var ErrInvalidOptions = errors.New("invalid extraction options")

// InternalError reports an unexpected fault recovered at the Parse boundary.
// Error() stays generic; Detail is meant for logs.
type InternalError struct {
	Detail string
}

func (e *InternalError) Error() string {
	return "failed to parse PDF: the document may be encrypted, damaged, or in an unsupported format"
}

// Reason is a stable machine-readable code for a Parse failure.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonEmptyBuffer       Reason = "empty_buffer"
	ReasonBufferTooSmall    Reason = "buffer_too_small"
	ReasonInvalidSignature  Reason = "invalid_signature"
	ReasonNoExtractableText Reason = "no_extractable_text"
	ReasonInternal          Reason = "internal_error"
)

// ReasonOf maps an error returned by Parse to its Reason. Errors that did not
// come from this package map to ReasonInternal; nil maps to ReasonNone.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrEmptyBuffer):
		return ReasonEmptyBuffer
	case errors.Is(err, ErrBufferTooSmall):
		return ReasonBufferTooSmall
	case errors.Is(err, ErrInvalidSignature):
		return ReasonInvalidSignature
	case errors.Is(err, ErrNoExtractableText):
		return ReasonNoExtractableText
	default:
		return ReasonInternal
	}
}
