// Package pdf extracts plain text from PDF documents for the ingestion
// pipeline. Extraction is pure Go (no external binaries) and returns pages
// concatenated in page order.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor converts raw document bytes into plain text.
// Implementations must be safe to call from multiple goroutines.
type Extractor interface {
	// Extract returns the full plain text of the document.
	Extract(ctx context.Context, data []byte) (string, error)
}

// TextExtractor implements Extractor for PDF input using a pure-Go reader.
type TextExtractor struct{}

// NewTextExtractor constructs a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract parses data as a PDF and returns the text of all pages,
// concatenated in page order. Pages that contain no extractable text
// contribute nothing; a document whose pages are all empty yields an empty
// string, not an error.
func (e *TextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: failed to open document: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("pdf: extraction cancelled at page %d/%d: %w", i, numPages, err)
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("pdf: failed to extract text from page %d/%d: %w", i, numPages, err)
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
