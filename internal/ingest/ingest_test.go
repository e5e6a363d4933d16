package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile_Dispatch(t *testing.T) {
	textCases := []struct {
		filename string
		hint     string
	}{
		{"guide.txt", "plain_text"},
		{"guide.md", "markdown"},
		{"guide.markdown", "markdown"},
		{"guide.html", "html"},
		{"guide.HTM", "html"},
	}
	for _, tc := range textCases {
		r, err := ForFile(tc.filename)
		require.NoError(t, err, tc.filename)
		tr, ok := r.(*TextReader)
		require.True(t, ok, tc.filename)
		assert.Equal(t, tc.hint, tr.Hint, tc.filename)
	}

	r, err := ForFile("guide.pdf")
	require.NoError(t, err)
	assert.IsType(t, &PDFReader{}, r)

	r, err = ForFile("guide.docx")
	require.NoError(t, err)
	assert.IsType(t, &DOCXReader{}, r)

	_, err = ForFile("guide.xls")
	assert.ErrorContains(t, err, "unsupported file extension")
}

func TestIsSupportedExtension(t *testing.T) {
	assert.True(t, IsSupportedExtension("a/b/guide.PDF"))
	assert.True(t, IsSupportedExtension("guide.md"))
	assert.False(t, IsSupportedExtension("guide.exe"))
	assert.False(t, IsSupportedExtension("guide"))
}

func TestTextReader_NormalizesLineEndings(t *testing.T) {
	doc, err := Read(strings.NewReader("Title\r\n\r\nIf X, then refer.\r\n"), "guide.txt")
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nIf X, then refer.\n", doc.Text)
	assert.Equal(t, "plain_text", doc.FormatHint)
	assert.Zero(t, doc.Pages)
}

func TestTextReader_PassesMarkupThrough(t *testing.T) {
	raw := "<html><body><h1>Occupancy</h1><p>Rules.</p></body></html>"
	doc, err := Read(strings.NewReader(raw), "guide.html")
	require.NoError(t, err)
	assert.Equal(t, raw, doc.Text)
	assert.Equal(t, "html", doc.FormatHint)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read(strings.NewReader("a,b,c"), "guide.csv")
	assert.Error(t, err)
}
