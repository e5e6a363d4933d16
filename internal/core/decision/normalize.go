package decision

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// normalize re-links dangling references, repairs mandatory-outcome coverage
// and computes tree metrics, in that order. The tree is extended in place
// and returned for chaining.
func normalize(tree *model.DecisionTree) *model.DecisionTree {
	relink(tree)
	repaired := repairCoverage(tree)
	tree.Metrics = computeMetrics(tree)
	tree.Metrics.RepairedLeaves = repaired
	return tree
}

// relink makes parent/child links mutually consistent: child ids that point
// nowhere are dropped, and any non-root node whose parent is missing or
// unset is re-attached under the root.
func relink(tree *model.DecisionTree) {
	ids := sortedIDs(tree.Nodes)

	for _, id := range ids {
		n := tree.Nodes[id]
		kept := n.ChildIDs[:0]
		for _, child := range n.ChildIDs {
			if tree.Nodes[child] != nil {
				kept = append(kept, child)
			}
		}
		n.ChildIDs = kept
	}

	for _, id := range ids {
		if id == tree.RootID {
			continue
		}
		n := tree.Nodes[id]
		if n.ParentID == "" || tree.Nodes[n.ParentID] == nil {
			n.ParentID = tree.RootID
		}
		if p := tree.Nodes[n.ParentID]; p != nil && !slices.Contains(p.ChildIDs, id) {
			p.ChildIDs = append(p.ChildIDs, id)
		}
	}
}

// repairCoverage adds a default BRANCH/LEAF pair for every mandatory outcome
// the tree's reachable leaves never produce, so an under-specified section
// still yields a structurally complete tree. Returns the number of leaves
// added.
func repairCoverage(tree *model.DecisionTree) int {
	covered := make(map[model.Outcome]bool)
	for id := range reachable(tree) {
		n := tree.Nodes[id]
		if n == nil || !n.IsLeaf() {
			continue
		}
		for _, o := range n.Outcomes {
			covered[o] = true
		}
	}

	ids := &idAlloc{prefix: tree.ID, n: len(tree.Nodes)}
	repaired := 0
	for _, outcome := range model.MandatoryOutcomes {
		if covered[outcome] {
			continue
		}
		branch := model.NewBranchNode(ids.nextFree(tree.Nodes), tree.RootID,
			fmt.Sprintf("No stated condition applies; default to %s", outcome))
		tree.AddNode(branch)
		tree.AddNode(model.NewLeafNode(ids.nextFree(tree.Nodes), branch.ID,
			[]model.Outcome{outcome},
			map[model.Outcome]string{outcome: "Default path; the source text does not specify this outcome."}))
		repaired++
	}
	return repaired
}

func computeMetrics(tree *model.DecisionTree) model.TreeMetrics {
	var m model.TreeMetrics
	seen := reachable(tree)
	covered := make(map[model.Outcome]bool)
	conditions := make(map[string]int)
	unreachable := 0

	for _, id := range sortedIDs(tree.Nodes) {
		n := tree.Nodes[id]
		switch n.Type {
		case model.DecisionRoot:
			m.RootCount++
		case model.DecisionBranch:
			m.BranchCount++
		case model.DecisionLeaf:
			m.LeafCount++
		}
		if !seen[id] {
			unreachable++
			continue
		}
		switch n.Type {
		case model.DecisionRoot, model.DecisionBranch:
			if c := strings.ToLower(strings.TrimSpace(n.Condition)); c != "" {
				conditions[c]++
			}
		case model.DecisionLeaf:
			for _, o := range n.Outcomes {
				if _, ok := model.IsMandatoryOutcome(string(o)); ok {
					covered[o] = true
				}
			}
		}
	}

	m.OutcomeCoverage = float64(len(covered)) / float64(len(model.MandatoryOutcomes))

	duplicates := 0
	for _, count := range conditions {
		if count > 1 {
			duplicates += count - 1
		}
	}
	score := 1.0 - 0.1*float64(duplicates) - 0.1*float64(unreachable)
	if score < 0 {
		score = 0
	}
	m.ConsistencyScore = score
	return m
}

// reachable returns the ids visitable from the root by child links. Safe on
// cyclic input.
func reachable(tree *model.DecisionTree) map[string]bool {
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if seen[id] || tree.Nodes[id] == nil {
			return
		}
		seen[id] = true
		for _, child := range tree.Nodes[id].ChildIDs {
			walk(child)
		}
	}
	walk(tree.RootID)
	return seen
}

func sortedIDs(nodes map[string]*model.DecisionTreeNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
