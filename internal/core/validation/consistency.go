package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// Consistency penalties. Cycles are the most severe defect because they
// make path semantics meaningless; the rest degrade trust gradually.
const (
	penaltyContradiction = 0.1
	penaltyDuplicate     = 0.1
	penaltyCycle         = 0.2
	penaltyUnreachable   = 0.1
)

var comparisonRe = regexp.MustCompile(`^(.*?)\s*(>=|<=|!=|==|=|>|<)\s*(.+)$`)

var complementOp = map[string]string{
	">=": "<",
	"<":  ">=",
	"<=": ">",
	">":  "<=",
	"=":  "!=",
	"!=": "=",
}

type comparison struct {
	key   string
	op    string
	value string
}

type conditionAtom struct {
	nodeID  string
	raw     string
	negated bool
	cmp     *comparison
}

// checkConsistency detects contradictory paths, duplicate sibling
// conditions, cycles and unreachable nodes, lowering one shared sub-score
// for each defect found anywhere in the forest.
func (v *Validator) checkConsistency(trees []*model.DecisionTree, res *model.ValidationResult) float64 {
	score := 1.0
	for _, tree := range trees {
		if len(tree.Nodes) == 0 {
			continue
		}
		score -= v.treeContradictions(tree, res)
		score -= v.treeSiblingDuplicates(tree, res)
		score -= v.treeCycles(tree, res)
		score -= v.treeUnreachable(tree, res)
	}
	return clamp01(score)
}

// treeContradictions flags root-to-leaf paths that require a condition in
// both a positive and a negated form: the same key compared with
// complementary operators, or the same text once with and once without a
// leading negation. Such a path can never be taken.
func (v *Validator) treeContradictions(tree *model.DecisionTree, res *model.ValidationResult) float64 {
	paths, _ := enumeratePaths(tree)
	reported := make(map[string]bool)
	penalty := 0.0
	for _, p := range paths {
		var atoms []conditionAtom
		for _, id := range p.nodeIDs {
			n := tree.Nodes[id]
			if n == nil || n.IsLeaf() {
				continue
			}
			if atom, ok := parseCondition(id, n.Condition); ok {
				atoms = append(atoms, atom)
			}
		}
		for i := 0; i < len(atoms); i++ {
			for j := i + 1; j < len(atoms); j++ {
				if !contradicts(atoms[i], atoms[j]) {
					continue
				}
				key := atoms[i].nodeID + "|" + atoms[j].nodeID
				if reported[key] {
					continue
				}
				reported[key] = true
				penalty += penaltyContradiction
				res.Issues = append(res.Issues, model.ValidationIssue{
					Severity:    model.SeverityWarning,
					IssueType:   model.IssueContradiction,
					Description: fmt.Sprintf("path requires both %q and %q", tree.Nodes[atoms[i].nodeID].Condition, tree.Nodes[atoms[j].nodeID].Condition),
					TreeID:      tree.ID,
					NodeIDs:     []string{atoms[i].nodeID, atoms[j].nodeID},
				})
			}
		}
	}
	return penalty
}

// treeSiblingDuplicates flags two children of the same node carrying the
// same normalized condition, which makes routing between them ambiguous.
func (v *Validator) treeSiblingDuplicates(tree *model.DecisionTree, res *model.ValidationResult) float64 {
	penalty := 0.0
	for _, id := range sortedNodeIDs(tree.Nodes) {
		n := tree.Nodes[id]
		byCondition := make(map[string][]string)
		for _, childID := range n.ChildIDs {
			child := tree.Nodes[childID]
			if child == nil || child.IsLeaf() {
				continue
			}
			norm := normalizeCondition(child.Condition)
			if norm == "" {
				continue
			}
			byCondition[norm] = append(byCondition[norm], childID)
		}

		conditions := make([]string, 0, len(byCondition))
		for c := range byCondition {
			conditions = append(conditions, c)
		}
		sort.Strings(conditions)
		for _, c := range conditions {
			ids := byCondition[c]
			if len(ids) < 2 {
				continue
			}
			penalty += penaltyDuplicate * float64(len(ids)-1)
			res.Issues = append(res.Issues, model.ValidationIssue{
				Severity:    model.SeverityWarning,
				IssueType:   model.IssueDuplicateCondition,
				Description: fmt.Sprintf("siblings under %s share the condition %q", id, c),
				TreeID:      tree.ID,
				NodeIDs:     ids,
			})
		}
	}
	return penalty
}

func (v *Validator) treeCycles(tree *model.DecisionTree, res *model.ValidationResult) float64 {
	const (white, gray, black = 0, 1, 2)
	color := make(map[string]int)
	var backEdges [][2]string
	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		for _, childID := range tree.Nodes[id].ChildIDs {
			if tree.Nodes[childID] == nil {
				continue
			}
			switch color[childID] {
			case white:
				visit(childID)
			case gray:
				backEdges = append(backEdges, [2]string{id, childID})
			}
		}
		color[id] = black
	}
	if tree.Root() != nil {
		visit(tree.RootID)
	}

	for _, edge := range backEdges {
		res.Issues = append(res.Issues, model.ValidationIssue{
			Severity:    model.SeverityWarning,
			IssueType:   model.IssueCycle,
			Description: fmt.Sprintf("node %s links back to ancestor %s", edge[0], edge[1]),
			TreeID:      tree.ID,
			NodeIDs:     []string{edge[0], edge[1]},
		})
	}
	return penaltyCycle * float64(len(backEdges))
}

func (v *Validator) treeUnreachable(tree *model.DecisionTree, res *model.ValidationResult) float64 {
	reachable := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if reachable[id] || tree.Nodes[id] == nil {
			return
		}
		reachable[id] = true
		for _, childID := range tree.Nodes[id].ChildIDs {
			walk(childID)
		}
	}
	walk(tree.RootID)

	var unreached []string
	for _, id := range sortedNodeIDs(tree.Nodes) {
		if !reachable[id] {
			unreached = append(unreached, id)
		}
	}
	if len(unreached) == 0 {
		return 0
	}
	res.Issues = append(res.Issues, model.ValidationIssue{
		Severity:    model.SeverityWarning,
		IssueType:   model.IssueUnreachable,
		Description: fmt.Sprintf("%d nodes are not reachable from the root", len(unreached)),
		TreeID:      tree.ID,
		NodeIDs:     unreached,
	})
	return penaltyUnreachable * float64(len(unreached))
}

// parseCondition normalizes a ROOT/BRANCH condition into a comparable atom.
// Leading "if"/"when"/"where" are dropped; "unless"/"not" mark negation; a
// trailing comparison is parsed into key/op/value when present.
func parseCondition(nodeID, condition string) (conditionAtom, bool) {
	raw := normalizeCondition(condition)
	if raw == "" {
		return conditionAtom{}, false
	}

	negated := false
	switch {
	case strings.HasPrefix(raw, "unless "):
		negated = true
		raw = strings.TrimPrefix(raw, "unless ")
	case strings.HasPrefix(raw, "not "):
		negated = true
		raw = strings.TrimPrefix(raw, "not ")
	}

	atom := conditionAtom{nodeID: nodeID, raw: raw, negated: negated}
	if m := comparisonRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		op := m[2]
		if op == "==" {
			op = "="
		}
		atom.cmp = &comparison{
			key:   strings.TrimSpace(m[1]),
			op:    op,
			value: strings.TrimSpace(m[3]),
		}
	}
	return atom, true
}

func normalizeCondition(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	for _, prefix := range []string{"if ", "when ", "where "} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	return s
}

func contradicts(a, b conditionAtom) bool {
	if a.cmp != nil && b.cmp != nil && a.negated == b.negated &&
		a.cmp.key == b.cmp.key && a.cmp.value == b.cmp.value &&
		complementOp[a.cmp.op] == b.cmp.op {
		return true
	}
	return a.raw == b.raw && a.negated != b.negated
}
