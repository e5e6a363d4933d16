package navigation

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// headingCandidate is one recognized heading line before tree assembly.
type headingCandidate struct {
	line          int
	title         string
	sectionNumber string
	level         model.NavigationLevel
	pattern       string
	confidence    float64
}

var (
	// "2 Borrower Eligibility", "2.1 Income Requirements", "A.1 Appendix",
	// "B. Definitions" style lines. Single-letter sections require the
	// dot so sentences starting "A borrower..." do not read as headings.
	numberedHeadingRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*\.?|[A-Z](?:\.\d+)+\.?|[A-Z]\.)\s+([A-Za-z].*?)\s*$`)

	markdownHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)

	// Embedded section number at the start of a heading title.
	numberedTitleRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(.+)$`)

	dotLeaderRe = regexp.MustCompile(`\.{3,}`)

	htmlSignatureRe       = regexp.MustCompile(`(?i)<(?:html|head|body|div|table|h[1-6])[\s>]`)
	pdfPageMarkerRe       = regexp.MustCompile(`(?i)^\s*page\s+\d+(?:\s+of\s+\d+)?\s*$`)
	markdownHeadingLineRe = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// DetectFormat resolves the document format from an explicit hint or the
// content signature. Ingestion quality issues are invisible here beyond a
// weaker signature.
func DetectFormat(raw, hint string) model.DocumentFormat {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "html", "htm":
		return model.FormatHTML
	case "markdown", "md":
		return model.FormatMarkdown
	case "pdf", "pdf_text":
		return model.FormatPDFText
	case "text", "txt", "plain", "plain_text":
		return model.FormatPlainText
	}

	head := raw
	if len(head) > 4000 {
		head = head[:4000]
	}
	lower := strings.ToLower(head)
	if strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html") {
		return model.FormatHTML
	}
	if len(htmlSignatureRe.FindAllStringIndex(head, 4)) >= 3 {
		return model.FormatHTML
	}
	if strings.ContainsRune(raw, '\f') {
		return model.FormatPDFText
	}
	pageMarkers := 0
	for _, line := range strings.Split(head, "\n") {
		if pdfPageMarkerRe.MatchString(line) {
			pageMarkers++
		}
	}
	if pageMarkers >= 2 {
		return model.FormatPDFText
	}
	if len(markdownHeadingLineRe.FindAllStringIndex(raw, 3)) >= 2 {
		return model.FormatMarkdown
	}
	return model.FormatPlainText
}

// levelForSegments maps a section number's dot-separated component count to
// an outline level: 1 segment is a chapter, 2 a section, 3 a subsection,
// anything deeper a paragraph.
func levelForSegments(n int) model.NavigationLevel {
	switch n {
	case 1:
		return model.LevelChapter
	case 2:
		return model.LevelSection
	case 3:
		return model.LevelSubsection
	}
	return model.LevelParagraph
}

func levelForMarkdownDepth(n int) model.NavigationLevel {
	switch n {
	case 1:
		return model.LevelChapter
	case 2:
		return model.LevelSection
	case 3:
		return model.LevelSubsection
	}
	return model.LevelParagraph
}

// scanLines runs the ordered heading recognizers over every line: numbered
// sections first, then markdown-style headers, then ALL-CAPS short lines.
// The first recognizer that matches a line claims it.
func scanLines(lines []string, maxHeadingLen int) []headingCandidate {
	var out []headingCandidate
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(trimmed) == "" || len(trimmed) > maxHeadingLen {
			continue
		}
		if dotLeaderRe.MatchString(trimmed) {
			// Dotted-leader lines belong to a table of contents, never
			// to the outline.
			continue
		}

		if m := numberedHeadingRe.FindStringSubmatch(trimmed); m != nil {
			num, title := strings.TrimSuffix(m[1], "."), strings.TrimSpace(m[2])
			if isPlausibleTitle(title) {
				segments := strings.Count(num, ".") + 1
				out = append(out, headingCandidate{
					line:          i,
					title:         title,
					sectionNumber: num,
					level:         levelForSegments(segments),
					pattern:       "numbered_section",
					confidence:    0.9,
				})
				continue
			}
		}

		if m := markdownHeadingRe.FindStringSubmatch(trimmed); m != nil {
			depth := len(m[1])
			title := strings.TrimSpace(m[2])
			cand := headingCandidate{
				line:       i,
				title:      title,
				level:      levelForMarkdownDepth(depth),
				pattern:    "markdown_header",
				confidence: 0.85,
			}
			if nm := numberedTitleRe.FindStringSubmatch(title); nm != nil {
				cand.sectionNumber = nm[1]
				cand.title = strings.TrimSpace(nm[2])
				cand.level = levelForSegments(strings.Count(nm[1], ".") + 1)
			}
			out = append(out, cand)
			continue
		}

		if isAllCapsHeading(trimmed) {
			out = append(out, headingCandidate{
				line:       i,
				title:      strings.TrimSpace(trimmed),
				level:      model.LevelChapter,
				pattern:    "all_caps",
				confidence: 0.6,
			})
		}
	}
	return out
}

// isPlausibleTitle rejects numbered lines that read like sentences rather
// than headings.
func isPlausibleTitle(title string) bool {
	if title == "" || len(title) > 100 {
		return false
	}
	if strings.HasSuffix(title, ",") || strings.HasSuffix(title, ";") {
		return false
	}
	// A sentence-final period is fine only on short titles; long
	// period-terminated lines are body text.
	if strings.HasSuffix(title, ".") && len(strings.Fields(title)) > 8 {
		return false
	}
	first := title[0]
	return first >= 'A' && first <= 'Z'
}

func isAllCapsHeading(line string) bool {
	s := strings.TrimSpace(line)
	if len(s) < 3 || len(s) > 80 {
		return false
	}
	if len(strings.Fields(s)) > 10 {
		return false
	}
	letters := 0
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			letters++
		case r >= '0' && r <= '9', r == ' ', r == '.', r == ',', r == '&',
			r == '-', r == '/', r == '(', r == ')', r == '\'', r == ':':
			// acceptable heading punctuation
		default:
			return false
		}
	}
	return letters >= 3
}
