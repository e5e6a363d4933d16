package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

func bareTree(id string) *model.DecisionTree {
	t := &model.DecisionTree{
		ID:     id,
		RootID: id + "_n000",
		Nodes:  make(map[string]*model.DecisionTreeNode),
	}
	t.AddNode(model.NewRootNode(id+"_n000", "Evaluate credit"))
	return t
}

func TestConsistency_ComplementaryComparisonsOnOnePath(t *testing.T) {
	tree := bareTree("dt_0000")
	tree.AddNode(model.NewBranchNode("dt_0000_n001", "dt_0000_n000", "Score >= 620"))
	tree.AddNode(model.NewBranchNode("dt_0000_n002", "dt_0000_n001", "Score < 620"))
	tree.AddNode(model.NewLeafNode("dt_0000_n003", "dt_0000_n002", []model.Outcome{model.OutcomeApprove}, nil))

	res := New().Validate([]*model.DecisionTree{tree})

	assert.InDelta(t, 0.9, res.ConsistencyScore, 1e-9)
	issues := findIssues(res, model.IssueContradiction)
	require.Len(t, issues, 1)
	assert.ElementsMatch(t, []string{"dt_0000_n001", "dt_0000_n002"}, issues[0].NodeIDs)
}

func TestConsistency_TextualNegationOnOnePath(t *testing.T) {
	tree := bareTree("dt_0000")
	tree.AddNode(model.NewBranchNode("dt_0000_n001", "dt_0000_n000", "borrower is self-employed"))
	tree.AddNode(model.NewBranchNode("dt_0000_n002", "dt_0000_n001", "not borrower is self-employed"))
	tree.AddNode(model.NewLeafNode("dt_0000_n003", "dt_0000_n002", []model.Outcome{model.OutcomeRefer}, nil))

	res := New().Validate([]*model.DecisionTree{tree})

	assert.InDelta(t, 0.9, res.ConsistencyScore, 1e-9)
	assert.Len(t, findIssues(res, model.IssueContradiction), 1)
}

func TestConsistency_ComplementarySiblingsAreFine(t *testing.T) {
	res := New().Validate([]*model.DecisionTree{completeTree("dt_0000")})
	assert.Equal(t, 1.0, res.ConsistencyScore)
	assert.Empty(t, findIssues(res, model.IssueContradiction))
}

func TestConsistency_DuplicateSiblingConditions(t *testing.T) {
	tree := bareTree("dt_0000")
	tree.AddNode(model.NewBranchNode("dt_0000_n001", "dt_0000_n000", "Score >= 620"))
	tree.AddNode(model.NewLeafNode("dt_0000_n002", "dt_0000_n001", []model.Outcome{model.OutcomeApprove}, nil))
	tree.AddNode(model.NewBranchNode("dt_0000_n003", "dt_0000_n000", "score >= 620"))
	tree.AddNode(model.NewLeafNode("dt_0000_n004", "dt_0000_n003", []model.Outcome{model.OutcomeDecline}, nil))

	res := New().Validate([]*model.DecisionTree{tree})

	assert.InDelta(t, 0.9, res.ConsistencyScore, 1e-9)
	issues := findIssues(res, model.IssueDuplicateCondition)
	require.Len(t, issues, 1)
	assert.ElementsMatch(t, []string{"dt_0000_n001", "dt_0000_n003"}, issues[0].NodeIDs)
}

func TestConsistency_CycleAndUnreachableNode(t *testing.T) {
	tree := bareTree("dt_0000")
	tree.AddNode(model.NewBranchNode("dt_0000_n001", "dt_0000_n000", "First check"))
	tree.AddNode(model.NewBranchNode("dt_0000_n002", "dt_0000_n001", "Second check"))
	// Link back to an ancestor.
	tree.Node("dt_0000_n002").ChildIDs = append(tree.Node("dt_0000_n002").ChildIDs, "dt_0000_n001")

	// Inserted without linking it into any child list.
	tree.Nodes["dt_0000_n005"] = &model.DecisionTreeNode{
		ID:        "dt_0000_n005",
		Type:      model.DecisionBranch,
		ParentID:  "dt_0000_n000",
		Condition: "island",
	}

	res := New().Validate([]*model.DecisionTree{tree})

	assert.InDelta(t, 0.7, res.ConsistencyScore, 1e-9)
	require.Len(t, findIssues(res, model.IssueCycle), 1)
	unreachable := findIssues(res, model.IssueUnreachable)
	require.Len(t, unreachable, 1)
	assert.Equal(t, []string{"dt_0000_n005"}, unreachable[0].NodeIDs)
}

func TestParseCondition(t *testing.T) {
	atom, ok := parseCondition("n1", "If Score >= 620")
	require.True(t, ok)
	assert.False(t, atom.negated)
	require.NotNil(t, atom.cmp)
	assert.Equal(t, comparison{key: "score", op: ">=", value: "620"}, *atom.cmp)

	atom, ok = parseCondition("n2", "unless income is verified")
	require.True(t, ok)
	assert.True(t, atom.negated)
	assert.Equal(t, "income is verified", atom.raw)
	assert.Nil(t, atom.cmp)

	atom, ok = parseCondition("n3", "When DTI == 43")
	require.True(t, ok)
	require.NotNil(t, atom.cmp)
	assert.Equal(t, comparison{key: "dti", op: "=", value: "43"}, *atom.cmp)

	_, ok = parseCondition("n4", "   ")
	assert.False(t, ok)
}
