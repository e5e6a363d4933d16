package model

// Outcome is a terminal business result of a decision path.
type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeDecline Outcome = "DECLINE"
	OutcomeRefer   Outcome = "REFER"
)

// MandatoryOutcomes is the fixed vocabulary every complete tree must cover.
var MandatoryOutcomes = []Outcome{OutcomeApprove, OutcomeDecline, OutcomeRefer}

// DefaultOutcome is the least-committal terminal used by repair and auto-fix.
const DefaultOutcome = OutcomeRefer

// IsMandatoryOutcome reports whether s names an outcome from the mandatory
// vocabulary, ignoring case.
func IsMandatoryOutcome(s string) (Outcome, bool) {
	for _, o := range MandatoryOutcomes {
		if string(o) == s || string(o) == normalizeOutcome(s) {
			return o, true
		}
	}
	return "", false
}

func normalizeOutcome(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// DecisionType is the variant tag of a decision-tree node.
type DecisionType string

const (
	DecisionRoot   DecisionType = "ROOT"
	DecisionBranch DecisionType = "BRANCH"
	DecisionLeaf   DecisionType = "LEAF"
)

// DecisionTreeNode is a closed tagged union over ROOT, BRANCH and LEAF.
// Condition is meaningful for ROOT and BRANCH; Outcomes and
// OutcomeDescriptions only for LEAF. The constructors below enforce the
// variant fields; the validator flags anything that bypassed them.
type DecisionTreeNode struct {
	ID                  string             `json:"node_id"`
	Type                DecisionType       `json:"decision_type"`
	Condition           string             `json:"condition,omitempty"`
	ParentID            string             `json:"parent_decision_id,omitempty"`
	ChildIDs            []string           `json:"child_decision_ids,omitempty"`
	Outcomes            []Outcome          `json:"outcomes,omitempty"`
	OutcomeDescriptions map[Outcome]string `json:"outcome_descriptions,omitempty"`
}

// NewRootNode builds a ROOT variant.
func NewRootNode(id, condition string) *DecisionTreeNode {
	return &DecisionTreeNode{ID: id, Type: DecisionRoot, Condition: condition}
}

// NewBranchNode builds a BRANCH variant attached to parentID.
func NewBranchNode(id, parentID, condition string) *DecisionTreeNode {
	return &DecisionTreeNode{ID: id, Type: DecisionBranch, ParentID: parentID, Condition: condition}
}

// NewLeafNode builds a LEAF variant attached to parentID.
func NewLeafNode(id, parentID string, outcomes []Outcome, descriptions map[Outcome]string) *DecisionTreeNode {
	return &DecisionTreeNode{
		ID:                  id,
		Type:                DecisionLeaf,
		ParentID:            parentID,
		Outcomes:            outcomes,
		OutcomeDescriptions: descriptions,
	}
}

// IsLeaf reports whether the node is a LEAF variant.
func (n *DecisionTreeNode) IsLeaf() bool { return n.Type == DecisionLeaf }

// DecisionTree is one extracted tree rooted at a decision section.
type DecisionTree struct {
	ID        string                       `json:"tree_id"`
	SectionID string                       `json:"section_id"`
	Title     string                       `json:"title"`
	RootID    string                       `json:"root_id"`
	Nodes     map[string]*DecisionTreeNode `json:"nodes"`
	Source    TreeSource                   `json:"source"`
	Metrics   TreeMetrics                  `json:"metrics"`
}

// TreeSource records which path produced the tree.
type TreeSource string

const (
	SourceOracle  TreeSource = "oracle"
	SourcePattern TreeSource = "pattern"
)

// TreeMetrics summarizes one tree's extraction quality.
type TreeMetrics struct {
	RootCount        int     `json:"root_count"`
	BranchCount      int     `json:"branch_count"`
	LeafCount        int     `json:"leaf_count"`
	OutcomeCoverage  float64 `json:"mandatory_outcomes_coverage"`
	ConsistencyScore float64 `json:"logical_consistency_score"`
	RepairedLeaves   int     `json:"repaired_leaves"`
}

// Node looks up a tree node by id.
func (t *DecisionTree) Node(id string) *DecisionTreeNode { return t.Nodes[id] }

// Root returns the tree's ROOT node.
func (t *DecisionTree) Root() *DecisionTreeNode { return t.Nodes[t.RootID] }

// AddNode inserts a node and links it into its parent's child list.
func (t *DecisionTree) AddNode(n *DecisionTreeNode) {
	t.Nodes[n.ID] = n
	if n.ParentID != "" {
		if p := t.Nodes[n.ParentID]; p != nil {
			p.ChildIDs = append(p.ChildIDs, n.ID)
		}
	}
}

// ExtractionResult is the decision extractor's result object. Absence of
// decision logic is a valid document state, reported with Success=false and
// a warning rather than an error.
type ExtractionResult struct {
	Trees             []*DecisionTree `json:"trees"`
	CompletenessScore float64         `json:"completeness_score"`
	Success           bool            `json:"success"`
	Errors            []string        `json:"errors,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// DecisionFragment is the wire shape expected inside an oracle response: a
// root condition with nested branches, leaves marked by a non-empty outcome.
// The oracle is untrusted; this is parsed defensively, never taken verbatim.
type DecisionFragment struct {
	Condition string           `json:"condition"`
	Branches  []FragmentBranch `json:"branches"`
}

// FragmentBranch is one level of a DecisionFragment. A branch with an
// Outcome and no sub-branches describes a leaf.
type FragmentBranch struct {
	Condition   string           `json:"condition"`
	Outcome     string           `json:"outcome,omitempty"`
	Description string           `json:"description,omitempty"`
	Branches    []FragmentBranch `json:"branches,omitempty"`
}
