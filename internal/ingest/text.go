package ingest

import (
	"fmt"
	"io"
	"strings"
)

// TextReader handles text-shaped formats: plain text, markdown and HTML.
// It only normalizes line endings; the structure lives in the text itself.
type TextReader struct {
	Hint string
}

func (t *TextReader) Read(r io.Reader, filename string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return &Document{Text: text, FormatHint: t.Hint}, nil
}
