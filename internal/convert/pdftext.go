// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFText is the embedded-text backend. It reads the text layer directly
// from the PDF with no layout analysis, which is fast but loses heading
// and table markup. Pages that fail text extraction are kept as empty
// pages so numbering stays aligned with the source document.
type PDFText struct{}

// NewPDFText returns the embedded-text converter.
func NewPDFText() *PDFText {
	return &PDFText{}
}

// Convert extracts the text of every page, terminating each page with a
// form feed so SplitPages can restore page numbers.
func (p *PDFText) Convert(pdfPath string) (string, error) {
	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", pdfPath, err)
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			buf.WriteString(pageSeparator)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			buf.WriteString(pageSeparator)
			continue
		}
		buf.WriteString(text)
		buf.WriteString(pageSeparator)
	}
	return buf.String(), nil
}
