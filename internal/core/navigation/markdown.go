package navigation

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// scanMarkdown collects heading candidates from a markdown AST instead of
// the line recognizers, so setext headings and hash headings inside
// blockquotes are still found. Content spans are assigned later by line
// range, which is why each candidate carries its source line.
func scanMarkdown(src []byte) []headingCandidate {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	starts := lineStarts(src)
	var out []headingCandidate

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.TrimSpace(string(h.Text(src)))
		if title == "" || h.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		cand := headingCandidate{
			line:       lineForOffset(starts, h.Lines().At(0).Start),
			title:      title,
			level:      levelForMarkdownDepth(h.Level),
			pattern:    "markdown_header",
			confidence: 0.85,
		}
		// An embedded section number decides the level; hash depth is
		// only a fallback. "## 2.1.3 Reserves" sits at subsection depth
		// no matter how the author chose the hashes.
		if m := numberedTitleRe.FindStringSubmatch(title); m != nil {
			cand.sectionNumber = m[1]
			cand.title = strings.TrimSpace(m[2])
			cand.level = levelForSegments(strings.Count(m[1], ".") + 1)
		}
		out = append(out, cand)
		return ast.WalkSkipChildren, nil
	})

	sort.SliceStable(out, func(i, j int) bool { return out[i].line < out[j].line })
	return out
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineForOffset(starts []int, off int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > off })
	return i - 1
}
