package chunking

import (
	"fmt"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// Config bounds chunk sizes in estimated tokens.
type Config struct {
	MaxTokens     int
	TargetTokens  int
	MinTokens     int
	OverlapTokens int
}

// normalize applies defaults and makes the bounds mutually consistent:
// target never exceeds max, and target plus min stays under max so a
// trailing merge cannot break the ceiling.
func (c Config) normalize() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 512
	}
	if c.TargetTokens <= 0 {
		c.TargetTokens = c.MaxTokens * 3 / 4
	}
	if c.TargetTokens > c.MaxTokens {
		c.TargetTokens = c.MaxTokens
	}
	if c.MinTokens <= 0 {
		c.MinTokens = c.MaxTokens / 8
	}
	if c.MinTokens > c.TargetTokens/2 {
		c.MinTokens = c.TargetTokens / 2
	}
	if c.TargetTokens+c.MinTokens > c.MaxTokens {
		c.TargetTokens = c.MaxTokens - c.MinTokens
	}
	if c.OverlapTokens <= 0 {
		c.OverlapTokens = c.MaxTokens / 16
	}
	// Overlap rides on top of a target-sized part, so their sum must stay
	// under the ceiling.
	if c.OverlapTokens > c.MaxTokens-c.TargetTokens {
		c.OverlapTokens = c.MaxTokens - c.TargetTokens
	}
	return c
}

// Chunker cuts navigation content into bounded semantic chunks and derives
// the relationship set between them.
type Chunker struct {
	cfg Config
}

func NewChunker(cfg Config) *Chunker {
	return &Chunker{cfg: cfg.normalize()}
}

// Chunk walks the outline in document order and emits chunks per node.
// Nodes with content are classified and split; titled nodes without content
// become header chunks. A nil or empty structure yields an empty result
// with zero coverage, not an error.
func (c *Chunker) Chunk(s *model.NavigationStructure) *model.ChunkingResult {
	res := &model.ChunkingResult{}
	if s == nil || len(s.Nodes) == 0 {
		return res
	}
	res.Metadata.DocumentType = string(s.Metadata.Format)

	eligible := 0
	seq := 0
	for _, n := range s.OrderedNodes() {
		res.Metadata.NodesVisited++
		content := strings.TrimSpace(n.Content)

		if content == "" {
			// The synthetic root is not a section; untitled empties
			// have nothing to say.
			if n.ID == s.RootID || strings.TrimSpace(n.Title) == "" {
				continue
			}
			eligible++
			res.Chunks = append(res.Chunks, c.newChunk(s, n, n.Title, model.ChunkHeader, &seq))
			res.Metadata.NodesChunked++
			continue
		}

		eligible++
		typ := Classify(n)
		parts := splitContent(content, typ, c.cfg)
		sep := "\n\n"
		if typ == model.ChunkDecision {
			sep = " "
		}
		parts, merged := mergeTrailing(parts, sep, c.cfg.MinTokens, c.cfg.MaxTokens)
		res.Metadata.MergedChunks += merged
		if len(parts) > 1 {
			res.Metadata.SplitChunks++
		}

		for _, part := range parts {
			res.Chunks = append(res.Chunks, c.newChunk(s, n, part, typ, &seq))
			if typ == model.ChunkDecision {
				res.Metadata.DecisionChunks++
			}
		}
		res.Metadata.NodesChunked++
	}

	res.Relationships = buildRelationships(s, res.Chunks)
	c.score(res, eligible)
	return res
}

func (c *Chunker) newChunk(s *model.NavigationStructure, n *model.NavigationNode, content string, typ model.ChunkType, seq *int) model.SemanticChunk {
	tokens := EstimateTokens(content)
	quality := 1.0
	if typ != model.ChunkHeader {
		quality = chunkQuality(content, tokens, c.cfg)
	}
	chunk := model.SemanticChunk{
		ID:         fmt.Sprintf("chunk_%04d", *seq),
		Content:    content,
		Type:       typ,
		NodeID:     n.ID,
		TokenCount: tokens,
		Context: model.ChunkContext{
			NavigationPath: s.Path(n.ID),
			ParentSection:  parentTitle(s, n),
			SectionNumber:  n.SectionNumber,
			HierarchyLevel: n.Level.Depth(),
			QualityScore:   quality,
		},
	}
	*seq++
	return chunk
}

func parentTitle(s *model.NavigationStructure, n *model.NavigationNode) string {
	if p := s.Nodes[n.ParentID]; p != nil {
		return p.Title
	}
	return ""
}

// chunkQuality starts at one and pays for rough edges: ending mid-sentence,
// undershooting the floor, or an indivisible unit over the ceiling.
func chunkQuality(content string, tokens int, cfg Config) float64 {
	q := 1.0
	if !endsAtBoundary(content) {
		q -= 0.15
	}
	if tokens < cfg.MinTokens {
		q -= 0.2
	}
	if tokens > cfg.MaxTokens {
		q -= 0.1
	}
	if q < 0 {
		q = 0
	}
	return q
}

func endsAtBoundary(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?', ':', ';':
		return true
	}
	return false
}

func (c *Chunker) score(res *model.ChunkingResult, eligible int) {
	if len(res.Chunks) == 0 || eligible == 0 {
		return
	}
	sum := 0.0
	for _, ch := range res.Chunks {
		sum += ch.Context.QualityScore
	}
	mean := sum / float64(len(res.Chunks))
	coverage := float64(res.Metadata.NodesChunked) / float64(eligible)
	res.Quality = model.ChunkQualityMetrics{
		OverallQuality:   0.6*mean + 0.4*coverage,
		MeanChunkQuality: mean,
		Coverage:         coverage,
	}
}
