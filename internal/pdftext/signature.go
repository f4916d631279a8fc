package pdftext

import (
	"bytes"
	"fmt"
)

var pdfMagic = []byte("%PDF-")

// ValidateSignature checks that buf starts with the %PDF- header.
func ValidateSignature(buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyBuffer
	}
	if len(buf) < len(pdfMagic) {
		return fmt.Errorf("%w (%d bytes)", ErrBufferTooSmall, len(buf))
	}
	if !bytes.Equal(buf[:len(pdfMagic)], pdfMagic) {
		return fmt.Errorf("%w (header %q)", ErrInvalidSignature, buf[:len(pdfMagic)])
	}
	return nil
}
