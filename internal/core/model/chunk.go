package model

// ChunkType classifies the dominant content signal of a chunk.
type ChunkType string

const (
	ChunkHeader     ChunkType = "HEADER"
	ChunkContent    ChunkType = "CONTENT"
	ChunkDecision   ChunkType = "DECISION"
	ChunkTable      ChunkType = "TABLE"
	ChunkDefinition ChunkType = "DEFINITION"
)

// RelationshipType classifies an edge between two chunks.
type RelationshipType string

const (
	RelSequential     RelationshipType = "SEQUENTIAL"
	RelParentChild    RelationshipType = "PARENT_CHILD"
	RelReferences     RelationshipType = "REFERENCES"
	RelDecisionBranch RelationshipType = "DECISION_BRANCH"
)

// ChunkContext carries the hierarchy a chunk was cut from.
type ChunkContext struct {
	NavigationPath []string `json:"navigation_path"`
	ParentSection  string   `json:"parent_section,omitempty"`
	SectionNumber  string   `json:"section_number,omitempty"`
	HierarchyLevel int      `json:"hierarchy_level"`
	QualityScore   float64  `json:"quality_score"`
}

// SemanticChunk is one bounded content unit. NodeID is a weak reference to
// the owning navigation node, not ownership.
type SemanticChunk struct {
	ID         string       `json:"chunk_id"`
	Content    string       `json:"content"`
	Type       ChunkType    `json:"chunk_type"`
	Context    ChunkContext `json:"context"`
	NodeID     string       `json:"node_id"`
	TokenCount int          `json:"token_count"`
}

// ChunkRelationship is an edge in the separate relationship set. The same
// pair of chunks may be connected by multiple relationship types.
type ChunkRelationship struct {
	SourceChunkID string           `json:"source_chunk_id"`
	TargetChunkID string           `json:"target_chunk_id"`
	Type          RelationshipType `json:"relationship_type"`
	Confidence    float64          `json:"confidence"`
	Evidence      []string         `json:"evidence,omitempty"`
}

// ChunkingMetadata describes one chunking run.
type ChunkingMetadata struct {
	DocumentType   string `json:"document_type"`
	NodesVisited   int    `json:"nodes_visited"`
	NodesChunked   int    `json:"nodes_chunked"`
	MergedChunks   int    `json:"merged_chunks"`
	SplitChunks    int    `json:"split_chunks"`
	DecisionChunks int    `json:"decision_chunks"`
}

// ChunkQualityMetrics is recomputed per run, never persisted as truth.
type ChunkQualityMetrics struct {
	OverallQuality   float64 `json:"overall_quality"`
	MeanChunkQuality float64 `json:"mean_chunk_quality"`
	Coverage         float64 `json:"coverage"`
}

// ChunkingResult aggregates chunks, their edge set and quality metrics.
// Chunks are owned here, not by the navigation structure.
type ChunkingResult struct {
	Chunks        []SemanticChunk     `json:"chunks"`
	Relationships []ChunkRelationship `json:"relationships"`
	Metadata      ChunkingMetadata    `json:"metadata"`
	Quality       ChunkQualityMetrics `json:"quality_metrics"`
}

// ChunksForNode returns the chunks cut from the given navigation node, in
// split order.
func (r *ChunkingResult) ChunksForNode(nodeID string) []SemanticChunk {
	var out []SemanticChunk
	for _, c := range r.Chunks {
		if c.NodeID == nodeID {
			out = append(out, c)
		}
	}
	return out
}
