package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFReader extracts the embedded text layer of a PDF. Scanned documents
// with no text layer come back empty; there is no OCR here.
type PDFReader struct{}

func (p *PDFReader) Read(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "guidegraph-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	f, reader, err := pdflib.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filename, err)
	}
	defer f.Close()

	var buf strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			// Form feed page separators survive into the raw text; the
			// navigation extractor keys its format sniffing on them.
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}

	return &Document{Text: buf.String(), FormatHint: "pdf_text", Pages: pages}, nil
}
