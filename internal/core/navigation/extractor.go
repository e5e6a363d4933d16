package navigation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/covenantlabs/guidegraph/internal/core/common"
	"github.com/covenantlabs/guidegraph/internal/core/model"
)

const rootNodeID = "nav_0000"

// Config bounds the heading and table-of-contents scans.
type Config struct {
	// MinTOCEntries is the smallest dotted-leader block accepted as a
	// table of contents.
	MinTOCEntries int
	// MaxHeadingLen is the longest line still considered as a heading.
	MaxHeadingLen int
	// TOCScanLines limits how deep into the document the TOC scan looks.
	TOCScanLines int
}

func (c Config) withDefaults() Config {
	if c.MinTOCEntries <= 0 {
		c.MinTOCEntries = 3
	}
	if c.MaxHeadingLen <= 0 {
		c.MaxHeadingLen = 120
	}
	if c.TOCScanLines <= 0 {
		c.TOCScanLines = 200
	}
	return c
}

// Extractor builds a navigation structure from raw document text.
type Extractor struct {
	cfg Config

	// NewDocumentID supplies document identifiers. Tests swap it out
	// for deterministic output.
	NewDocumentID func() string
}

func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		cfg:           cfg.withDefaults(),
		NewDocumentID: uuid.NewString,
	}
}

// Extract parses rawText into an outline tree rooted at a synthetic
// document node. formatHint may be empty, in which case the format is
// sniffed from the content. The returned structure always has a root, even
// when no headings were found.
func (e *Extractor) Extract(rawText, documentName, formatHint string) (*model.NavigationStructure, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, model.ErrEmptyDocument
	}

	format := DetectFormat(rawText, formatHint)
	working := rawText
	var warnings []string

	switch format {
	case model.FormatHTML:
		flat, err := flattenHTML(rawText)
		if err != nil || strings.TrimSpace(flat) == "" {
			warnings = append(warnings, "html parse failed; scanning raw markup")
		} else {
			working = flat
		}
	case model.FormatPDFText:
		// Page breaks become line breaks so spans never straddle a
		// form feed.
		working = strings.ReplaceAll(working, "\f", "\n")
	}

	lines := strings.Split(working, "\n")
	toc, tocStart, tocEnd := extractTOC(lines, e.cfg.MinTOCEntries, e.cfg.TOCScanLines)
	if toc == nil {
		warnings = append(warnings, "no table of contents detected")
	}

	var cands []headingCandidate
	if format == model.FormatMarkdown {
		cands = scanMarkdown([]byte(working))
	}
	if len(cands) == 0 {
		cands = scanLines(lines, e.cfg.MaxHeadingLen)
	}
	if toc != nil {
		kept := cands[:0]
		for _, c := range cands {
			if c.line < tocStart || c.line > tocEnd {
				kept = append(kept, c)
			}
		}
		cands = kept
	}
	if len(cands) == 0 {
		warnings = append(warnings, "no headings detected; full text attached to document root")
	}

	boostFromTOC(cands, toc)

	structure := e.buildTree(cands, lines, tocStart, tocEnd, documentName)
	structure.TableOfContents = toc
	tagDecisionRoots(structure, cands)

	structure.Metadata = model.ExtractionMetadata{
		DocumentName: documentName,
		Format:       format,
		LineCount:    len(lines),
		HeadingCount: len(cands),
		ExtractedAt:  time.Now().UTC(),
		Warnings:     warnings,
	}
	return structure, nil
}

// buildTree attaches each candidate to the nearest preceding heading with a
// strictly shallower level, falling back to the document root. Content is
// the line span from just after a heading to the next heading.
func (e *Extractor) buildTree(cands []headingCandidate, lines []string, tocStart, tocEnd int, documentName string) *model.NavigationStructure {
	rootTitle := documentName
	if rootTitle == "" {
		rootTitle = "Document"
	}
	root := &model.NavigationNode{
		ID:              rootNodeID,
		Title:           rootTitle,
		Level:           model.LevelDocument,
		ConfidenceScore: 1.0,
		Metadata:        model.NodeMetadata{PatternType: "document_root"},
	}
	nodes := map[string]*model.NavigationNode{root.ID: root}

	stack := []*model.NavigationNode{root}
	for i, c := range cands {
		n := &model.NavigationNode{
			ID:              fmt.Sprintf("nav_%04d", i+1),
			Title:           c.title,
			Level:           c.level,
			SectionNumber:   c.sectionNumber,
			ConfidenceScore: c.confidence,
			Metadata: model.NodeMetadata{
				LineNumber:  c.line,
				PatternType: c.pattern,
			},
		}

		for len(stack) > 1 && stack[len(stack)-1].Level.Depth() >= n.Level.Depth() {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		n.ParentID = parent.ID
		parent.Children = append(parent.Children, n.ID)
		stack = append(stack, n)
		nodes[n.ID] = n

		from := c.line + 1
		to := len(lines)
		if i+1 < len(cands) {
			to = cands[i+1].line
		}
		n.Content = joinSpan(lines, from, to, tocStart, tocEnd)
	}

	if len(cands) > 0 {
		root.Content = joinSpan(lines, 0, cands[0].line, tocStart, tocEnd)
	} else {
		root.Content = joinSpan(lines, 0, len(lines), tocStart, tocEnd)
	}

	return &model.NavigationStructure{
		DocumentID: e.NewDocumentID(),
		RootID:     root.ID,
		Nodes:      nodes,
	}
}

// joinSpan joins lines[from:to], skipping any overlap with the TOC block.
func joinSpan(lines []string, from, to, tocStart, tocEnd int) string {
	if from < 0 {
		from = 0
	}
	if to > len(lines) {
		to = len(lines)
	}
	var b strings.Builder
	for i := from; i < to; i++ {
		if tocStart >= 0 && i >= tocStart && i <= tocEnd {
			continue
		}
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

// boostFromTOC nudges confidence up for headings the table of contents
// corroborates by section number or title.
func boostFromTOC(cands []headingCandidate, toc *model.TableOfContents) {
	if toc == nil {
		return
	}
	numbers := make(map[string]bool, len(toc.Entries))
	titles := make(map[string]bool, len(toc.Entries))
	for _, e := range toc.Entries {
		if e.SectionNumber != "" {
			numbers[e.SectionNumber] = true
		}
		titles[strings.ToLower(e.Title)] = true
	}
	for i := range cands {
		if numbers[cands[i].sectionNumber] || titles[strings.ToLower(cands[i].title)] {
			cands[i].confidence += 0.05
			if cands[i].confidence > 1.0 {
				cands[i].confidence = 1.0
			}
		}
	}
}

// tagDecisionRoots marks sections whose title or body carries decision
// language and records them, in document order, as candidate roots for
// decision tree extraction.
func tagDecisionRoots(s *model.NavigationStructure, cands []headingCandidate) {
	for i := range cands {
		id := fmt.Sprintf("nav_%04d", i+1)
		n := s.Nodes[id]
		if n == nil {
			continue
		}
		if common.HasDecisionLanguage(n.Title + "\n" + n.Content) {
			n.Metadata.DecisionIndicator = true
			s.DecisionRoots = append(s.DecisionRoots, id)
		}
	}
}
