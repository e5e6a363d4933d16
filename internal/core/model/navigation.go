package model

import "time"

// NavigationLevel is the outline depth class of a navigation node.
type NavigationLevel string

const (
	LevelDocument   NavigationLevel = "DOCUMENT"
	LevelChapter    NavigationLevel = "CHAPTER"
	LevelSection    NavigationLevel = "SECTION"
	LevelSubsection NavigationLevel = "SUBSECTION"
	LevelParagraph  NavigationLevel = "PARAGRAPH"
)

// Depth returns the numeric rank of a level, DOCUMENT being 0.
func (l NavigationLevel) Depth() int {
	switch l {
	case LevelDocument:
		return 0
	case LevelChapter:
		return 1
	case LevelSection:
		return 2
	case LevelSubsection:
		return 3
	case LevelParagraph:
		return 4
	}
	return 5
}

// DocumentFormat identifies how the raw text was produced.
type DocumentFormat string

const (
	FormatHTML      DocumentFormat = "html"
	FormatMarkdown  DocumentFormat = "markdown"
	FormatPDFText   DocumentFormat = "pdf_text"
	FormatPlainText DocumentFormat = "plain_text"
)

// NodeMetadata carries per-node extraction detail.
type NodeMetadata struct {
	LineNumber        int    `json:"line_number"`
	PatternType       string `json:"pattern_type"`
	DecisionIndicator bool   `json:"decision_indicator"`
}

// NavigationNode is one entry in the document outline tree.
// Children are held as ids in document order; ParentID is the back-reference.
type NavigationNode struct {
	ID              string          `json:"node_id"`
	Title           string          `json:"title"`
	Level           NavigationLevel `json:"level"`
	SectionNumber   string          `json:"section_number,omitempty"`
	ParentID        string          `json:"parent_id,omitempty"`
	Children        []string        `json:"children"`
	Content         string          `json:"content,omitempty"`
	ConfidenceScore float64         `json:"confidence_score"`
	Metadata        NodeMetadata    `json:"metadata"`
}

// TOCEntry is one line of a detected table of contents.
type TOCEntry struct {
	Title         string          `json:"title"`
	SectionNumber string          `json:"section_number,omitempty"`
	PageNumber    int             `json:"page_number,omitempty"`
	Level         NavigationLevel `json:"level"`
}

// TableOfContents is derived once per document and read-only afterwards.
type TableOfContents struct {
	Entries          []TOCEntry `json:"entries"`
	ConfidenceScore  float64    `json:"confidence_score"`
	ExtractionMethod string     `json:"extraction_method"`
}

// ExtractionMetadata describes one navigation-extraction run.
type ExtractionMetadata struct {
	DocumentName string         `json:"document_name"`
	Format       DocumentFormat `json:"format"`
	LineCount    int            `json:"line_count"`
	HeadingCount int            `json:"heading_count"`
	ExtractedAt  time.Time      `json:"extracted_at"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// NavigationStructure is the aggregate root produced by the navigation
// extractor. Exactly one node has LevelDocument and an empty ParentID.
type NavigationStructure struct {
	DocumentID      string                     `json:"document_id"`
	RootID          string                     `json:"root_id"`
	Nodes           map[string]*NavigationNode `json:"nodes"`
	TableOfContents *TableOfContents           `json:"table_of_contents,omitempty"`
	DecisionRoots   []string                   `json:"decision_roots"`
	Metadata        ExtractionMetadata         `json:"extraction_metadata"`
}

// Root returns the document-level node.
func (s *NavigationStructure) Root() *NavigationNode {
	return s.Nodes[s.RootID]
}

// Node looks up a node by id.
func (s *NavigationStructure) Node(id string) *NavigationNode {
	return s.Nodes[id]
}

// Path returns the ordered titles from the root to the given node, inclusive.
// Unresolvable ids yield the partial path collected so far.
func (s *NavigationStructure) Path(id string) []string {
	var rev []string
	seen := make(map[string]bool)
	for cur := s.Nodes[id]; cur != nil && !seen[cur.ID]; cur = s.Nodes[cur.ParentID] {
		seen[cur.ID] = true
		rev = append(rev, cur.Title)
		if cur.ParentID == "" {
			break
		}
	}
	path := make([]string, len(rev))
	for i, t := range rev {
		path[len(rev)-1-i] = t
	}
	return path
}

// ContentNodes returns all nodes with non-empty content in document order.
func (s *NavigationStructure) ContentNodes() []*NavigationNode {
	var out []*NavigationNode
	s.walk(s.RootID, func(n *NavigationNode) {
		if n.Content != "" {
			out = append(out, n)
		}
	})
	return out
}

// OrderedNodes returns every node in depth-first document order.
func (s *NavigationStructure) OrderedNodes() []*NavigationNode {
	var out []*NavigationNode
	s.walk(s.RootID, func(n *NavigationNode) { out = append(out, n) })
	return out
}

func (s *NavigationStructure) walk(id string, visit func(*NavigationNode)) {
	n := s.Nodes[id]
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Children {
		s.walk(child, visit)
	}
}

// StructureValidation is the report of the separate navigation validation
// call. It never blocks extraction.
type StructureValidation struct {
	OrphanedNodes     []string `json:"orphaned_nodes,omitempty"`
	CompletenessScore float64  `json:"completeness_score"`
	StructureScore    float64  `json:"structure_score"`
	Warnings          []string `json:"warnings,omitempty"`
}
