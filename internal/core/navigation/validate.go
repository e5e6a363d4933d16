package navigation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// ValidateStructure checks an extracted outline for broken links and scores
// how well the tree holds together. Completeness is the fraction of nodes
// reachable from the root; structure reflects how consistently numbered
// sections sit at the depth their numbering implies.
func ValidateStructure(s *model.NavigationStructure) model.StructureValidation {
	var v model.StructureValidation
	if s == nil || len(s.Nodes) == 0 {
		v.Warnings = append(v.Warnings, "structure has no nodes")
		return v
	}

	// Orphans are unreachable from the root, so this pass has to walk the
	// node map itself, not the tree.
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		n := s.Nodes[id]
		if n.ParentID != "" && s.Nodes[n.ParentID] == nil {
			v.OrphanedNodes = append(v.OrphanedNodes, n.ID)
		}
		for _, cid := range n.Children {
			child := s.Nodes[cid]
			if child == nil {
				v.Warnings = append(v.Warnings, fmt.Sprintf("node %s lists missing child %s", n.ID, cid))
				continue
			}
			if child.ParentID != n.ID {
				v.Warnings = append(v.Warnings, fmt.Sprintf("node %s claims child %s whose parent is %s", n.ID, cid, child.ParentID))
			}
		}
	}
	sort.Strings(v.OrphanedNodes)

	reachable := map[string]bool{}
	if root := s.Root(); root != nil {
		queue := []string{root.ID}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if reachable[id] {
				continue
			}
			reachable[id] = true
			if n := s.Nodes[id]; n != nil {
				queue = append(queue, n.Children...)
			}
		}
	} else {
		v.Warnings = append(v.Warnings, "root node missing")
	}
	v.CompletenessScore = float64(len(reachable)) / float64(len(s.Nodes))

	numbered, consistent := 0, 0
	for _, id := range ids {
		n := s.Nodes[id]
		if n.SectionNumber == "" {
			continue
		}
		numbered++
		depth := strings.Count(n.SectionNumber, ".") + 1
		if depth > 4 {
			depth = 4
		}
		if n.Level.Depth() == depth {
			consistent++
		}
	}
	score := 1.0
	if numbered > 0 {
		score = float64(consistent) / float64(numbered)
	}
	score -= 0.1 * float64(len(v.OrphanedNodes))
	if score < 0 {
		score = 0
	}
	v.StructureScore = score
	return v
}
