package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is what a reader hands to the processing pipeline: raw text, a
// format hint for the navigation extractor, and the source page count when
// the container knows one.
type Document struct {
	Text       string
	FormatHint string
	Pages      int
}

// Reader extracts raw text from one container format.
type Reader interface {
	Read(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists the file extensions this service can ingest.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the reader for a filename. Markup formats pass through as
// text because the navigation extractor parses them itself; only container
// formats need real extraction here.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{Hint: "plain_text"}, nil
	case ".md", ".markdown":
		return &TextReader{Hint: "markdown"}, nil
	case ".html", ".htm":
		return &TextReader{Hint: "html"}, nil
	case ".pdf":
		return &PDFReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Read dispatches on the filename and extracts in one step.
func Read(r io.Reader, filename string) (*Document, error) {
	reader, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return reader.Read(r, filename)
}
