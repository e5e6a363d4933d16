package ingest

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXReader extracts paragraph text from a .docx file. Heading styles are
// rendered as hash-prefixed lines so the outline survives the flattening
// and the navigation extractor can rebuild it from text alone.
type DOCXReader struct{}

func (d *DOCXReader) Read(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so spool to a temp file.
	tmp, err := os.CreateTemp("", "guidegraph-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", filename, err)
	}

	var buf strings.Builder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		if level := headingLevel(para); level > 0 {
			buf.WriteString("\n")
			buf.WriteString(strings.Repeat("#", level))
			buf.WriteString(" ")
			buf.WriteString(text)
			buf.WriteString("\n")
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &Document{Text: buf.String(), FormatHint: "markdown"}, nil
}

func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch style[len("heading"):] {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4":
		return 4
	case "5":
		return 5
	case "6":
		return 6
	}
	return 0
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
