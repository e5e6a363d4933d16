package graph

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core"
	"github.com/covenantlabs/guidegraph/internal/core/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// processedDocument hand-builds a small but fully linked result: two
// navigation nodes, two chunks with two relationships, and one
// three-node decision tree.
func processedDocument() *core.ProcessResult {
	structure := &model.NavigationStructure{
		DocumentID: "doc-1",
		RootID:     "nav_0000",
		Nodes: map[string]*model.NavigationNode{
			"nav_0000": {
				ID:       "nav_0000",
				Title:    "Lending Guide",
				Level:    model.LevelDocument,
				Children: []string{"nav_0001"},
			},
			"nav_0001": {
				ID:              "nav_0001",
				Title:           "Credit Requirements",
				Level:           model.LevelSection,
				SectionNumber:   "2.2",
				ParentID:        "nav_0000",
				Content:         "If the score is below 620, decline.",
				ConfidenceScore: 0.9,
				Metadata:        model.NodeMetadata{DecisionIndicator: true},
			},
		},
		Metadata: model.ExtractionMetadata{
			DocumentName: "Lending Guide",
			Format:       model.FormatPlainText,
			ExtractedAt:  time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
		},
	}

	chunks := &model.ChunkingResult{
		Chunks: []model.SemanticChunk{
			{ID: "chunk_0000", Content: "Lending Guide", Type: model.ChunkHeader, NodeID: "nav_0000", TokenCount: 3},
			{ID: "chunk_0001", Content: "If the score is below 620, decline.", Type: model.ChunkDecision, NodeID: "nav_0001", TokenCount: 9},
		},
		Relationships: []model.ChunkRelationship{
			{SourceChunkID: "chunk_0000", TargetChunkID: "chunk_0001", Type: model.RelSequential, Confidence: 1.0},
			{SourceChunkID: "chunk_0000", TargetChunkID: "chunk_0001", Type: model.RelParentChild, Confidence: 1.0},
		},
	}

	tree := &model.DecisionTree{
		ID:        "dt_0000",
		SectionID: "nav_0001",
		Title:     "Credit Requirements",
		RootID:    "dt_0000_n000",
		Source:    model.SourcePattern,
		Nodes: map[string]*model.DecisionTreeNode{
			"dt_0000_n000": {ID: "dt_0000_n000", Type: model.DecisionRoot, Condition: "Evaluate Credit Requirements", ChildIDs: []string{"dt_0000_n001"}},
			"dt_0000_n001": {ID: "dt_0000_n001", Type: model.DecisionBranch, ParentID: "dt_0000_n000", Condition: "Score below 620", ChildIDs: []string{"dt_0000_n002"}},
			"dt_0000_n002": {ID: "dt_0000_n002", Type: model.DecisionLeaf, ParentID: "dt_0000_n001", Outcomes: []model.Outcome{model.OutcomeDecline}},
		},
	}

	return &core.ProcessResult{
		DocumentID: "doc-1",
		Navigation: structure,
		Chunking:   chunks,
		Extraction: &model.ExtractionResult{Trees: []*model.DecisionTree{tree}, Success: true, CompletenessScore: 1.0},
		Validation: &model.ValidationResult{
			StructuralScore:   1.0,
			CompletenessScore: 1.0,
			ConsistencyScore:  1.0,
			OutcomeScore:      1.0,
			OverallQuality:    0.97,
		},
		Trees: []*model.DecisionTree{tree},
	}
}

func findParams(executed []ExecutedQuery, query string) []map[string]any {
	var out []map[string]any
	for _, e := range executed {
		if e.Query == query {
			out = append(out, e.Params)
		}
	}
	return out
}

func TestAssemble_WritesWholeDocument(t *testing.T) {
	mock := &MockDriver{}
	a := NewAssembler(mock, quietLogger())

	stats, err := a.Assemble(context.Background(), "doc-1", processedDocument())
	require.NoError(t, err)

	// 2 navigation + 2 chunks + 3 decision nodes.
	assert.Equal(t, 7, stats.Nodes)
	// 1 contains + 2 has_chunk + 2 chunk relationships + 2 tree edges
	// + 1 has_decision_tree.
	assert.Equal(t, 8, stats.Edges)
	assert.Zero(t, stats.Failed)

	roots := findParams(mock.Executed, SaveNavigationRootQuery)
	require.Len(t, roots, 1)
	assert.Equal(t, "doc-1:nav_0000", roots[0]["uid"])
	assert.Equal(t, "Lending Guide", roots[0]["document_name"])
	assert.Equal(t, 0.97, roots[0]["quality"])
	assert.Equal(t, true, roots[0]["valid"])

	sections := findParams(mock.Executed, SaveNavigationSectionQuery)
	require.Len(t, sections, 1)
	assert.Equal(t, "doc-1:nav_0001", sections[0]["uid"])
	assert.Equal(t, true, sections[0]["decision_indicator"])

	leaves := findParams(mock.Executed, SaveDecisionLeafQuery)
	require.Len(t, leaves, 1)
	assert.Equal(t, []any{"DECLINE"}, leaves[0]["outcomes"])

	hasTree := findParams(mock.Executed, SaveHasTreeEdgeQuery)
	require.Len(t, hasTree, 1)
	assert.Equal(t, "doc-1:nav_0001", hasTree[0]["from_uid"])
	assert.Equal(t, "doc-1:dt_0000_n000", hasTree[0]["to_uid"])

	// Re-running issues the same MERGE statements, so re-assembly upserts
	// rather than duplicates.
	before := len(mock.Executed)
	again, err := a.Assemble(context.Background(), "doc-1", processedDocument())
	require.NoError(t, err)
	assert.Equal(t, stats, again)
	assert.Len(t, mock.Executed, before*2)
}

func TestAssemble_CountsFailuresAndContinues(t *testing.T) {
	mock := &MockDriver{FailQuery: SaveChunkQuery, Err: errors.New("write refused")}
	a := NewAssembler(mock, quietLogger())

	stats, err := a.Assemble(context.Background(), "doc-1", processedDocument())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 5, stats.Nodes)
	assert.Equal(t, 8, stats.Edges)
}

func TestAssemble_UnknownRelationshipTypeCounted(t *testing.T) {
	res := processedDocument()
	res.Chunking.Relationships = append(res.Chunking.Relationships,
		model.ChunkRelationship{SourceChunkID: "chunk_0000", TargetChunkID: "chunk_0001", Type: "WEIRD"})

	mock := &MockDriver{}
	a := NewAssembler(mock, quietLogger())
	stats, err := a.Assemble(context.Background(), "doc-1", res)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 8, stats.Edges)
}

func TestAssemble_DocumentIDFallback(t *testing.T) {
	mock := &MockDriver{}
	a := NewAssembler(mock, quietLogger())

	_, err := a.Assemble(context.Background(), "", processedDocument())
	require.NoError(t, err)

	roots := findParams(mock.Executed, SaveNavigationRootQuery)
	require.Len(t, roots, 1)
	assert.Equal(t, "doc-1:nav_0000", roots[0]["uid"])
	assert.Equal(t, "doc-1", roots[0]["doc_id"])
}

func TestAssemble_IncompleteResult(t *testing.T) {
	a := NewAssembler(&MockDriver{}, quietLogger())

	_, err := a.Assemble(context.Background(), "doc-1", nil)
	assert.Error(t, err)

	res := processedDocument()
	res.Validation = nil
	_, err = a.Assemble(context.Background(), "doc-1", res)
	assert.Error(t, err)
}

func TestAssemble_CancelledContext(t *testing.T) {
	mock := &MockDriver{}
	a := NewAssembler(mock, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := a.Assemble(ctx, "doc-1", processedDocument())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Nodes)
	assert.Empty(t, mock.Executed)
}
