package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

func findRel(rels []model.ChunkRelationship, src, dst string, typ model.RelationshipType) *model.ChunkRelationship {
	for i := range rels {
		r := &rels[i]
		if r.SourceChunkID == src && r.TargetChunkID == dst && r.Type == typ {
			return r
		}
	}
	return nil
}

func TestRelationships_HierarchyAndReferences(t *testing.T) {
	res := NewChunker(Config{MaxTokens: 512, MinTokens: 8}).Chunk(guideStructure())
	require.Len(t, res.Chunks, 4)

	overview := res.Chunks[0] // nav_0001
	income := res.Chunks[1]   // nav_0002
	credit := res.Chunks[2]   // nav_0003

	pc := findRel(res.Relationships, overview.ID, income.ID, model.RelParentChild)
	require.NotNil(t, pc)
	assert.Equal(t, 1.0, pc.Confidence)

	pc2 := findRel(res.Relationships, overview.ID, credit.ID, model.RelParentChild)
	assert.NotNil(t, pc2)

	// "Section 2.1" in the credit text points back at the income section.
	ref := findRel(res.Relationships, credit.ID, income.ID, model.RelReferences)
	require.NotNil(t, ref)
	assert.Equal(t, 0.9, ref.Confidence)
	require.Len(t, ref.Evidence, 1)
	assert.Equal(t, "Section 2.1", ref.Evidence[0])

	// Single-chunk sections carry no sequential edges.
	for _, rel := range res.Relationships {
		assert.NotEqual(t, model.RelSequential, rel.Type)
	}

	// No edge may point at a chunk that does not exist.
	ids := map[string]bool{}
	for _, c := range res.Chunks {
		ids[c.ID] = true
	}
	for _, rel := range res.Relationships {
		assert.True(t, ids[rel.SourceChunkID], "unknown source %s", rel.SourceChunkID)
		assert.True(t, ids[rel.TargetChunkID], "unknown target %s", rel.TargetChunkID)
		assert.NotEqual(t, rel.SourceChunkID, rel.TargetChunkID)
	}
}

func TestRelationships_TitleMentionFromDecisionChunk(t *testing.T) {
	s := guideStructure()
	// Drop the section-number citation so only the title mention remains.
	s.Nodes["nav_0003"].Content = "When reserves fall short, apply the Income Requirements before approval. If the credit score is below 620, then the loan is declined."

	res := NewChunker(Config{MaxTokens: 512, MinTokens: 8}).Chunk(s)
	require.Len(t, res.Chunks, 4)

	income := res.Chunks[1]
	credit := res.Chunks[2]

	ref := findRel(res.Relationships, credit.ID, income.ID, model.RelReferences)
	require.NotNil(t, ref)
	assert.Equal(t, 0.7, ref.Confidence)
	assert.Equal(t, []string{"Income Requirements"}, ref.Evidence)
}
