package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

func leafOutcomeUnion(tree *model.DecisionTree) map[model.Outcome]bool {
	union := make(map[model.Outcome]bool)
	for _, n := range tree.Nodes {
		if n.IsLeaf() {
			for _, o := range n.Outcomes {
				union[o] = true
			}
		}
	}
	return union
}

func branchConditions(tree *model.DecisionTree) []string {
	var out []string
	for _, id := range sortedIDs(tree.Nodes) {
		if n := tree.Nodes[id]; n.Type == model.DecisionBranch {
			out = append(out, n.Condition)
		}
	}
	return out
}

func TestPatternTree_InlineRuleList(t *testing.T) {
	text := "If FICO >= 620 AND income verified: APPROVE; If FICO < 620: DECLINE; otherwise: REFER"
	tree := normalize(patternTree("dt_0000", "nav_0003", "Credit Requirements", text))

	require.NotNil(t, tree)
	assert.Equal(t, model.SourcePattern, tree.Source)
	assert.Equal(t, 1, tree.Metrics.RootCount)
	assert.Equal(t, 3, tree.Metrics.BranchCount)
	assert.Equal(t, 3, tree.Metrics.LeafCount)
	assert.Equal(t, 0, tree.Metrics.RepairedLeaves)
	assert.Equal(t, 1.0, tree.Metrics.OutcomeCoverage)
	assert.Equal(t, 1.0, tree.Metrics.ConsistencyScore)

	union := leafOutcomeUnion(tree)
	assert.True(t, union[model.OutcomeApprove])
	assert.True(t, union[model.OutcomeDecline])
	assert.True(t, union[model.OutcomeRefer])

	conditions := branchConditions(tree)
	assert.Contains(t, conditions, "If FICO >= 620 AND income verified")
	assert.Contains(t, conditions, "If FICO < 620")
	assert.Contains(t, conditions, "Otherwise")
}

func TestPatternTree_NoClausesYieldsDefaultLeaf(t *testing.T) {
	tree := normalize(patternTree("dt_0000", "nav_0001", "Filing Standards",
		"General documentation standards apply to every file."))

	require.NotNil(t, tree)
	assert.Equal(t, "Evaluate Filing Standards", tree.Root().Condition)

	// One default REFER leaf sits directly under the root; repair then adds
	// branch/leaf pairs for the two outcomes the text never mentions.
	var defaultLeaf *model.DecisionTreeNode
	for _, id := range tree.Root().ChildIDs {
		if n := tree.Nodes[id]; n.IsLeaf() {
			defaultLeaf = n
		}
	}
	require.NotNil(t, defaultLeaf)
	assert.Equal(t, []model.Outcome{model.OutcomeRefer}, defaultLeaf.Outcomes)

	assert.Equal(t, 2, tree.Metrics.RepairedLeaves)
	assert.Equal(t, 1.0, tree.Metrics.OutcomeCoverage)
	assert.Len(t, tree.Nodes, 6)
}

func TestScanClauses_SentenceShapes(t *testing.T) {
	clauses := scanClauses("When the score is below 620, the loan must be declined. Files missing documentation go to review.")
	require.Len(t, clauses, 1)
	assert.Equal(t, "When the score is below 620", clauses[0].condition)
	assert.Equal(t, model.OutcomeDecline, clauses[0].outcome)
	assert.Equal(t, "the loan must be declined.", clauses[0].detail)

	clauses = scanClauses("If income is verified then approve the loan.")
	require.Len(t, clauses, 1)
	assert.Equal(t, "If income is verified", clauses[0].condition)
	assert.Equal(t, model.OutcomeApprove, clauses[0].outcome)
	assert.Equal(t, "approve the loan.", clauses[0].detail)
}

func TestInferOutcome(t *testing.T) {
	tests := []struct {
		text string
		want model.Outcome
	}{
		{"the loan must be declined", model.OutcomeDecline},
		{"the application may not be approved", model.OutcomeDecline},
		{"the borrower is not eligible", model.OutcomeDecline},
		{"the application is approved", model.OutcomeApprove},
		{"the borrower qualifies for the program", model.OutcomeApprove},
		{"refer the file to manual underwriting", model.OutcomeRefer},
		{"escalate to a senior underwriter", model.OutcomeRefer},
		{"income must be verified", model.DefaultOutcome},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferOutcome(tt.text), "text: %s", tt.text)
	}
}
