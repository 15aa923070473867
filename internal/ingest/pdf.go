package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor defines the document ingestion boundary: it turns an uploaded
// document into plain text for chunking.
type Extractor interface {
	ExtractText(data []byte) (string, error)
}

// PDFExtractor implements Extractor for PDF documents.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDFExtractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Ensure PDFExtractor implements Extractor
var _ Extractor = (*PDFExtractor)(nil)

// ExtractText extracts the plain text of every page, joined with spaces
// and whitespace-normalized. Pages that fail to decode are skipped rather
// than failing the whole document.
func (e *PDFExtractor) ExtractText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		b.WriteString(text)
		b.WriteString(" ")
	}

	// Collapse runs of whitespace so word-based chunking is stable.
	return strings.Join(strings.Fields(b.String()), " "), nil
}
