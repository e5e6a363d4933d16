package validation

import (
	"fmt"
	"maps"
	"sort"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// Guards path enumeration against adversarial forests where shared child
// lists make the path count combinatorial.
const maxPathsPerTree = 10000

// Validator scores decision-tree forests and can repair incomplete paths.
// It accepts any forest satisfying the DecisionTreeNode shape, regardless
// of which extractor produced it, and never mutates its input.
type Validator struct{}

func New() *Validator { return &Validator{} }

// ContextScores carries the quality signals earlier pipeline stages supply.
// They contribute to the overall blend but have no validator of their own.
type ContextScores struct {
	EntityLinkage          float64
	NavigationPreservation float64
}

// NeutralContextScores is used when the caller has nothing to report.
func NeutralContextScores() ContextScores {
	return ContextScores{EntityLinkage: 1.0, NavigationPreservation: 1.0}
}

// Validate scores the forest with neutral context scores.
func (v *Validator) Validate(trees []*model.DecisionTree) *model.ValidationResult {
	return v.ValidateWithContext(trees, NeutralContextScores())
}

// ValidateWithContext runs the four check families and blends their
// sub-scores by the fixed weights. Running it twice on the same forest
// yields identical results.
func (v *Validator) ValidateWithContext(trees []*model.DecisionTree, scores ContextScores) *model.ValidationResult {
	res := &model.ValidationResult{
		EntityLinkScore: clamp01(scores.EntityLinkage),
		NavigationScore: clamp01(scores.NavigationPreservation),
	}

	res.StructuralScore = v.checkStructure(trees, res)
	res.CompletenessScore = v.checkCompleteness(trees, res)
	res.ConsistencyScore = v.checkConsistency(trees, res)
	res.OutcomeScore = v.checkOutcomeCoverage(trees, res)

	res.OverallQuality = model.WeightStructural*res.StructuralScore +
		model.WeightConsistency*res.ConsistencyScore +
		model.WeightOutcome*res.OutcomeScore +
		model.WeightPathCoverage*res.CompletenessScore +
		model.WeightEntityLink*res.EntityLinkScore +
		model.WeightNavigation*res.NavigationScore
	return res
}

// ValidateAndFix repairs incomplete paths on a copy of the forest, then
// validates the repaired copy. The input forest is left untouched.
func (v *Validator) ValidateAndFix(trees []*model.DecisionTree) (*model.ValidationResult, []*model.DecisionTree) {
	fixed, applied := v.AutoFix(trees)
	res := v.Validate(fixed)
	res.AutoFixesApplied = applied
	return res, fixed
}

// AutoFix deep-copies the forest and attaches the default outcome to every
// incomplete path: leaves with no outcome get it set, childless interior
// nodes get a default leaf below them. It never invents an APPROVE or
// DECLINE. Returns the repaired copy and the number of fixes applied.
func (v *Validator) AutoFix(trees []*model.DecisionTree) ([]*model.DecisionTree, int) {
	fixed := make([]*model.DecisionTree, len(trees))
	applied := 0
	for i, tree := range trees {
		ft := copyTree(tree)
		applied += fixTree(ft)
		fixed[i] = ft
	}
	return fixed, applied
}

func fixTree(tree *model.DecisionTree) int {
	if tree == nil || tree.Root() == nil {
		return 0
	}
	fixes := 0
	next := 0
	handled := make(map[string]bool)
	paths, _ := enumeratePaths(tree)
	for _, p := range paths {
		terminal := p.terminal
		if handled[terminal.ID] {
			continue
		}
		handled[terminal.ID] = true

		if terminal.IsLeaf() {
			if len(terminal.Outcomes) == 0 {
				terminal.Outcomes = []model.Outcome{model.DefaultOutcome}
				if terminal.OutcomeDescriptions == nil {
					terminal.OutcomeDescriptions = make(map[model.Outcome]string)
				}
				terminal.OutcomeDescriptions[model.DefaultOutcome] = "Default outcome attached during auto-fix"
				fixes++
			}
			continue
		}

		leaf := model.NewLeafNode(freeFixID(tree, &next), terminal.ID,
			[]model.Outcome{model.DefaultOutcome},
			map[model.Outcome]string{model.DefaultOutcome: "Default outcome attached during auto-fix"})
		tree.AddNode(leaf)
		fixes++
	}
	return fixes
}

func freeFixID(tree *model.DecisionTree, next *int) string {
	for {
		id := fmt.Sprintf("%s_fix%03d", tree.ID, *next)
		*next++
		if tree.Nodes[id] == nil {
			return id
		}
	}
}

func copyTree(t *model.DecisionTree) *model.DecisionTree {
	out := &model.DecisionTree{
		ID:        t.ID,
		SectionID: t.SectionID,
		Title:     t.Title,
		RootID:    t.RootID,
		Source:    t.Source,
		Metrics:   t.Metrics,
		Nodes:     make(map[string]*model.DecisionTreeNode, len(t.Nodes)),
	}
	for id, n := range t.Nodes {
		out.Nodes[id] = &model.DecisionTreeNode{
			ID:                  n.ID,
			Type:                n.Type,
			Condition:           n.Condition,
			ParentID:            n.ParentID,
			ChildIDs:            append([]string(nil), n.ChildIDs...),
			Outcomes:            append([]model.Outcome(nil), n.Outcomes...),
			OutcomeDescriptions: maps.Clone(n.OutcomeDescriptions),
		}
	}
	return out
}

// checkStructure verifies node typing per tree: every node carries a known
// type, the required ROOT and LEAF types are represented, and variant
// fields are not abused. Returns the fraction of structurally sound trees.
func (v *Validator) checkStructure(trees []*model.DecisionTree, res *model.ValidationResult) float64 {
	if len(trees) == 0 {
		return 1.0
	}
	sound := 0
	for _, tree := range trees {
		if len(tree.Nodes) == 0 {
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityCritical,
				IssueType:   model.IssueEmptyTree,
				Description: "tree has no nodes",
				TreeID:      tree.ID,
			})
			continue
		}

		ok := true
		var haveRoot, haveLeaf bool
		for _, id := range sortedNodeIDs(tree.Nodes) {
			n := tree.Nodes[id]
			res.Counts.TotalNodes++
			switch n.Type {
			case model.DecisionRoot:
				res.Counts.RootNodes++
				haveRoot = true
			case model.DecisionBranch:
				res.Counts.BranchNodes++
			case model.DecisionLeaf:
				res.Counts.LeafNodes++
				haveLeaf = true
			default:
				ok = false
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityCritical,
					IssueType:   model.IssueInvalidType,
					Description: fmt.Sprintf("node %s has unknown type %q", id, n.Type),
					TreeID:      tree.ID,
					NodeIDs:     []string{id},
				})
			}

			if n.IsLeaf() && n.Condition != "" {
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityWarning,
					IssueType:   model.IssueVariantViolation,
					Description: fmt.Sprintf("leaf %s carries a condition", id),
					TreeID:      tree.ID,
					NodeIDs:     []string{id},
				})
			}
			if !n.IsLeaf() && len(n.Outcomes) > 0 {
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityWarning,
					IssueType:   model.IssueVariantViolation,
					Description: fmt.Sprintf("%s node %s carries outcomes", n.Type, id),
					TreeID:      tree.ID,
					NodeIDs:     []string{id},
				})
			}

			if id != tree.RootID && (n.ParentID == "" || tree.Nodes[n.ParentID] == nil) {
				res.Counts.OrphanedNodes++
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityWarning,
					IssueType:   model.IssueOrphanNode,
					Description: fmt.Sprintf("node %s has no resolvable parent", id),
					TreeID:      tree.ID,
					NodeIDs:     []string{id},
				})
			}
		}

		if tree.Root() == nil {
			ok = false
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityCritical,
				IssueType:   model.IssueMissingType,
				Description: fmt.Sprintf("root id %s does not resolve", tree.RootID),
				TreeID:      tree.ID,
			})
		}
		if !haveRoot || !haveLeaf {
			ok = false
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityCritical,
				IssueType:   model.IssueMissingType,
				Description: "tree is missing a ROOT or LEAF node",
				TreeID:      tree.ID,
			})
		}
		if ok {
			sound++
		}
	}
	return float64(sound) / float64(len(trees))
}

// checkCompleteness enumerates every root-to-leaf path depth-first, without
// de-duplication. A path is valid iff its terminal is a LEAF carrying at
// least one outcome.
func (v *Validator) checkCompleteness(trees []*model.DecisionTree, res *model.ValidationResult) float64 {
	total, valid := 0, 0
	for _, tree := range trees {
		if tree.Root() == nil {
			continue
		}
		paths, truncated := enumeratePaths(tree)
		if truncated {
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityInfo,
				IssueType:   model.IssueIncompletePath,
				Description: fmt.Sprintf("path enumeration truncated at %d paths", maxPathsPerTree),
				TreeID:      tree.ID,
			})
		}
		for _, p := range paths {
			total++
			if p.terminal.IsLeaf() && len(p.terminal.Outcomes) > 0 {
				valid++
				continue
			}
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityWarning,
				IssueType:   model.IssueIncompletePath,
				Description: fmt.Sprintf("path terminates at %s without an outcome", p.terminal.ID),
				TreeID:      tree.ID,
				NodeIDs:     append([]string(nil), p.nodeIDs...),
				AutoFixable: true,
			})
		}
	}
	res.Counts.TotalPaths = total
	res.Counts.ValidPaths = valid
	res.Counts.IncompletePaths = total - valid
	if total == 0 {
		return 1.0
	}
	return float64(valid) / float64(total)
}

// checkOutcomeCoverage takes the union of outcomes across all leaves of all
// trees and compares it to the mandatory set. Outcomes outside the
// vocabulary are flagged but never counted.
func (v *Validator) checkOutcomeCoverage(trees []*model.DecisionTree, res *model.ValidationResult) float64 {
	covered := make(map[model.Outcome]bool)
	for _, tree := range trees {
		for _, id := range sortedNodeIDs(tree.Nodes) {
			n := tree.Nodes[id]
			if !n.IsLeaf() {
				continue
			}
			for _, o := range n.Outcomes {
				if _, ok := model.IsMandatoryOutcome(string(o)); ok {
					covered[o] = true
					continue
				}
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityWarning,
					IssueType:   model.IssueVariantViolation,
					Description: fmt.Sprintf("leaf %s carries outcome %q outside the mandatory vocabulary", id, o),
					TreeID:      tree.ID,
					NodeIDs:     []string{id},
				})
			}
		}
	}
	for _, o := range model.MandatoryOutcomes {
		if !covered[o] {
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityCritical,
				IssueType:   model.IssueMissingOutcome,
				Description: fmt.Sprintf("no leaf in the forest produces %s", o),
			})
		}
	}
	return float64(len(covered)) / float64(len(model.MandatoryOutcomes))
}

type treePath struct {
	nodeIDs  []string
	terminal *model.DecisionTreeNode
}

// enumeratePaths walks every root-to-terminal path depth-first. Nodes
// already on the current path are not re-entered, so cyclic input
// terminates. truncated reports whether the per-tree cap was hit.
func enumeratePaths(tree *model.DecisionTree) (paths []treePath, truncated bool) {
	root := tree.Root()
	if root == nil {
		return nil, false
	}
	onPath := make(map[string]bool)
	var cur []string
	var walk func(n *model.DecisionTreeNode)
	walk = func(n *model.DecisionTreeNode) {
		if len(paths) >= maxPathsPerTree {
			truncated = true
			return
		}
		onPath[n.ID] = true
		cur = append(cur, n.ID)

		descended := false
		for _, childID := range n.ChildIDs {
			child := tree.Nodes[childID]
			if child == nil || onPath[childID] {
				continue
			}
			descended = true
			walk(child)
		}
		if !descended {
			paths = append(paths, treePath{
				nodeIDs:  append([]string(nil), cur...),
				terminal: n,
			})
		}

		cur = cur[:len(cur)-1]
		onPath[n.ID] = false
	}
	walk(root)
	return paths, truncated
}

func sortedNodeIDs(nodes map[string]*model.DecisionTreeNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
