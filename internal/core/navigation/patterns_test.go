package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		hint string
		want model.DocumentFormat
	}{
		{"explicit hint wins", "# looks like markdown", "html", model.FormatHTML},
		{"doctype", "<!DOCTYPE html><html><body><p>hi</p></body></html>", "", model.FormatHTML},
		{"form feed means pdf text", "first page\fsecond page", "", model.FormatPDFText},
		{"page markers mean pdf text", "intro\nPage 1 of 9\nbody\nPage 2 of 9\n", "", model.FormatPDFText},
		{"hash headings mean markdown", "# One\n\ntext\n\n# Two\nmore\n", "", model.FormatMarkdown},
		{"plain fallback", "nothing here resembles markup", "", model.FormatPlainText},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFormat(tc.raw, tc.hint))
		})
	}
}

func TestScanLines_RejectsProse(t *testing.T) {
	lines := []string{
		"A borrower may request cancellation at any time.",
		"620 is the minimum score for this program.",
		"2.1 Income Requirements",
		"Section totals ............ 12",
	}
	cands := scanLines(lines, 120)
	require.Len(t, cands, 1)
	assert.Equal(t, "2.1", cands[0].sectionNumber)
	assert.Equal(t, "Income Requirements", cands[0].title)
	assert.Equal(t, model.LevelSection, cands[0].level)
	assert.Equal(t, "numbered_section", cands[0].pattern)
}

func TestScanLines_LetterSections(t *testing.T) {
	lines := []string{
		"B. Definitions",
		"A.1 Reserved Terms",
	}
	cands := scanLines(lines, 120)
	require.Len(t, cands, 2)
	assert.Equal(t, "B", cands[0].sectionNumber)
	assert.Equal(t, model.LevelChapter, cands[0].level)
	assert.Equal(t, "A.1", cands[1].sectionNumber)
	assert.Equal(t, model.LevelSection, cands[1].level)
}

func TestLevelForSegments(t *testing.T) {
	assert.Equal(t, model.LevelChapter, levelForSegments(1))
	assert.Equal(t, model.LevelSection, levelForSegments(2))
	assert.Equal(t, model.LevelSubsection, levelForSegments(3))
	assert.Equal(t, model.LevelParagraph, levelForSegments(4))
	assert.Equal(t, model.LevelParagraph, levelForSegments(6))
}

func TestExtractTOC_RequiresMinimumEntries(t *testing.T) {
	lines := []string{
		"Overview",
		"1 Scope ........ 2",
		"2 Terms ........ 3",
		"body text follows here",
	}
	toc, _, _ := extractTOC(lines, 3, 0)
	assert.Nil(t, toc)
}

func TestExtractTOC_BlockRange(t *testing.T) {
	lines := []string{
		"Guide",
		"",
		"Table of Contents",
		"1 Scope ............. 2",
		"2 Terms ............. 3",
		"3 Standards ......... 4",
		"",
		"1 Scope",
	}
	toc, start, end := extractTOC(lines, 3, 0)
	require.NotNil(t, toc)
	assert.Len(t, toc.Entries, 3)
	// The caption folds into the block so it cannot become a heading.
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)
	assert.InDelta(t, 1.0, toc.ConfidenceScore, 1e-9)
}
