package reader

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFInfo describes a PDF's structure as seen by a full parser.
type PDFInfo struct {
	Version   string `json:"version" yaml:"version"`
	PageCount int    `json:"page_count" yaml:"page_count"`
	Encrypted bool   `json:"encrypted" yaml:"encrypted"`
}

// Hint explains, in user terms, why a PDF with this structure has no text.
func (i *PDFInfo) Hint() string {
	switch {
	case i == nil:
		return ""
	case i.Encrypted:
		return "the document is encrypted"
	case i.PageCount > 0:
		return fmt.Sprintf("%d page(s) with no text objects, likely scanned images", i.PageCount)
	default:
		return "the document has no pages"
	}
}

// InspectPDF parses data with pdfcpu in relaxed mode. It is diagnostic only
// and never feeds text extraction.
func InspectPDF(data []byte) (info *PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("inspect PDF: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	return &PDFInfo{
		Version:   ctx.VersionString(),
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
	}, nil
}
