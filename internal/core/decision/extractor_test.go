package decision

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core/model"
	"github.com/covenantlabs/guidegraph/internal/oracle"
)

type stubSource struct {
	available bool
	calls     atomic.Int32
	respond   func(req oracle.Request) (*model.DecisionFragment, error)

	mu       sync.Mutex
	requests []oracle.Request
}

func (s *stubSource) Available() bool { return s.available }

func (s *stubSource) Extract(_ context.Context, req oracle.Request) (*model.DecisionFragment, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decisionStructure has two decision-bearing sections (one pre-tagged, one
// caught by the language detector) and one plain definitions section.
func decisionStructure() *model.NavigationStructure {
	nodes := map[string]*model.NavigationNode{
		"nav_0000": {
			ID: "nav_0000", Title: "Lending Guide", Level: model.LevelDocument,
			Children: []string{"nav_0001", "nav_0002", "nav_0003"},
		},
		"nav_0001": {
			ID: "nav_0001", Title: "Income Requirements", Level: model.LevelSection,
			SectionNumber: "2.1", ParentID: "nav_0000",
			Content: "If the debt-to-income ratio exceeds 43 percent, the application must be declined. " +
				"If the ratio is 43 percent or lower and income is verified, the application may be approved. " +
				"Otherwise, refer the file to manual underwriting.",
			Metadata: model.NodeMetadata{DecisionIndicator: true},
		},
		"nav_0002": {
			ID: "nav_0002", Title: "Definitions", Level: model.LevelSection,
			SectionNumber: "2.2", ParentID: "nav_0000",
			Content: "A conforming loan follows the limits published annually.",
		},
		"nav_0003": {
			ID: "nav_0003", Title: "Credit Requirements", Level: model.LevelSection,
			SectionNumber: "2.3", ParentID: "nav_0000",
			Content: "When the representative credit score is below 620 the loan must be declined. " +
				"A score of 620 or higher is acceptable when no late payments appear.",
		},
	}
	return &model.NavigationStructure{
		DocumentID:    "doc-1",
		RootID:        "nav_0000",
		Nodes:         nodes,
		DecisionRoots: []string{"nav_0001"},
	}
}

func completeFragment(title string) *model.DecisionFragment {
	return &model.DecisionFragment{
		Condition: "Evaluate " + title,
		Branches: []model.FragmentBranch{
			{Condition: "Requirements met", Outcome: "APPROVE"},
			{Condition: "Requirements failed", Outcome: "DECLINE"},
			{Condition: "Documentation incomplete", Outcome: "REFER"},
		},
	}
}

func TestExtract_BuildsOneTreePerDecisionSection(t *testing.T) {
	src := &stubSource{available: true, respond: func(req oracle.Request) (*model.DecisionFragment, error) {
		return completeFragment(req.SectionTitle), nil
	}}
	ex := NewExtractor(src, Config{MaxConcurrent: 2}, testLogger())

	result, err := ex.Extract(context.Background(), decisionStructure())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1.0, result.CompletenessScore)
	assert.Equal(t, int32(2), src.calls.Load())

	require.Len(t, result.Trees, 2)
	assert.Equal(t, "dt_0000", result.Trees[0].ID)
	assert.Equal(t, "nav_0001", result.Trees[0].SectionID)
	assert.Equal(t, "dt_0001", result.Trees[1].ID)
	assert.Equal(t, "nav_0003", result.Trees[1].SectionID)

	for _, tree := range result.Trees {
		assert.Equal(t, model.SourceOracle, tree.Source)
		assert.Equal(t, 1.0, tree.Metrics.OutcomeCoverage)
		assert.Equal(t, 0, tree.Metrics.RepairedLeaves)
	}
}

func TestExtract_RequestCarriesNavigationPath(t *testing.T) {
	src := &stubSource{available: true, respond: func(req oracle.Request) (*model.DecisionFragment, error) {
		return completeFragment(req.SectionTitle), nil
	}}
	ex := NewExtractor(src, Config{}, testLogger())

	_, err := ex.Extract(context.Background(), decisionStructure())
	require.NoError(t, err)

	var incomeReq *oracle.Request
	for i := range src.requests {
		if src.requests[i].SectionTitle == "Income Requirements" {
			incomeReq = &src.requests[i]
		}
	}
	require.NotNil(t, incomeReq)
	assert.Equal(t, []string{"Lending Guide", "Income Requirements"}, incomeReq.NavigationPath)
	assert.Contains(t, incomeReq.SectionText, "debt-to-income ratio")
}

func TestExtract_FallbackWhenOracleFails(t *testing.T) {
	src := &stubSource{available: true, respond: func(oracle.Request) (*model.DecisionFragment, error) {
		return nil, errors.New("backend down")
	}}
	ex := NewExtractor(src, Config{MaxConcurrent: 2}, testLogger())

	result, err := ex.Extract(context.Background(), decisionStructure())
	require.NoError(t, err)

	// Every decision section still gets a tree, via the pattern fallback.
	assert.True(t, result.Success)
	require.Len(t, result.Trees, 2)
	assert.Equal(t, 1.0, result.CompletenessScore)
	assert.Len(t, result.Warnings, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, int32(2), src.calls.Load())

	for _, tree := range result.Trees {
		assert.Equal(t, model.SourcePattern, tree.Source)
		assert.Equal(t, 1.0, tree.Metrics.OutcomeCoverage)
	}

	// The credit section's text only ever declines, so its tree needed two
	// repaired leaves to cover the full outcome set.
	assert.Equal(t, 2, result.Trees[1].Metrics.RepairedLeaves)
}

func TestExtract_PatternOnlyWithoutBackend(t *testing.T) {
	ex := NewExtractor(nil, Config{}, testLogger())

	result, err := ex.Extract(context.Background(), decisionStructure())
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, result.Trees, 2)
	assert.Empty(t, result.Warnings)
	for _, tree := range result.Trees {
		assert.Equal(t, model.SourcePattern, tree.Source)
	}
}

func TestExtract_RepairCoversUnderSpecifiedFragment(t *testing.T) {
	src := &stubSource{available: true, respond: func(req oracle.Request) (*model.DecisionFragment, error) {
		return &model.DecisionFragment{
			Condition: "Evaluate " + req.SectionTitle,
			Branches:  []model.FragmentBranch{{Condition: "Score >= 620", Outcome: "APPROVE"}},
		}, nil
	}}
	ex := NewExtractor(src, Config{}, testLogger())

	result, err := ex.Extract(context.Background(), decisionStructure())
	require.NoError(t, err)
	require.Len(t, result.Trees, 2)

	for _, tree := range result.Trees {
		union := leafOutcomeUnion(tree)
		assert.Len(t, union, 3)
		assert.Equal(t, 2, tree.Metrics.RepairedLeaves)
		assert.Equal(t, 1.0, tree.Metrics.OutcomeCoverage)
	}
}

func TestExtract_NoDecisionSections(t *testing.T) {
	structure := &model.NavigationStructure{
		DocumentID: "doc-2",
		RootID:     "nav_0000",
		Nodes: map[string]*model.NavigationNode{
			"nav_0000": {ID: "nav_0000", Title: "Style Guide", Level: model.LevelDocument, Children: []string{"nav_0001"}},
			"nav_0001": {
				ID: "nav_0001", Title: "Formatting", Level: model.LevelSection, ParentID: "nav_0000",
				Content: "Use consistent fonts and spacing throughout the document.",
			},
		},
	}
	ex := NewExtractor(nil, Config{}, testLogger())

	result, err := ex.Extract(context.Background(), structure)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.Trees)
	assert.NotEmpty(t, result.Warnings)
	assert.Zero(t, result.CompletenessScore)
}

func TestExtract_NilStructure(t *testing.T) {
	ex := NewExtractor(nil, Config{}, testLogger())
	_, err := ex.Extract(context.Background(), nil)
	assert.Error(t, err)
}
