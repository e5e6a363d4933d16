package decision

import (
	"fmt"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// idAlloc hands out sequential node ids under a tree-id prefix.
type idAlloc struct {
	prefix string
	n      int
}

func (a *idAlloc) next() string {
	id := fmt.Sprintf("%s_n%03d", a.prefix, a.n)
	a.n++
	return id
}

// nextFree skips ids already taken, for trees that were not built by this
// package's own allocators.
func (a *idAlloc) nextFree(nodes map[string]*model.DecisionTreeNode) string {
	for {
		id := a.next()
		if nodes[id] == nil {
			return id
		}
	}
}

// treeFromFragment converts a validated oracle fragment into a tree. A leaf
// branch that carries its own condition becomes a BRANCH/LEAF pair, since
// conditions live on interior nodes only.
func treeFromFragment(treeID, sectionID, title string, f *model.DecisionFragment) *model.DecisionTree {
	ids := &idAlloc{prefix: treeID}
	tree := &model.DecisionTree{
		ID:        treeID,
		SectionID: sectionID,
		Title:     title,
		Nodes:     make(map[string]*model.DecisionTreeNode),
		Source:    model.SourceOracle,
	}

	root := model.NewRootNode(ids.next(), f.Condition)
	tree.RootID = root.ID
	tree.AddNode(root)
	addFragmentBranches(tree, ids, root.ID, f.Branches)
	return tree
}

func addFragmentBranches(tree *model.DecisionTree, ids *idAlloc, parentID string, branches []model.FragmentBranch) {
	for _, b := range branches {
		if len(b.Branches) > 0 {
			branch := model.NewBranchNode(ids.next(), parentID, b.Condition)
			tree.AddNode(branch)
			addFragmentBranches(tree, ids, branch.ID, b.Branches)
			continue
		}

		outcome := model.Outcome(b.Outcome)
		leafParent := parentID
		if strings.TrimSpace(b.Condition) != "" {
			branch := model.NewBranchNode(ids.next(), parentID, b.Condition)
			tree.AddNode(branch)
			leafParent = branch.ID
		}
		var descriptions map[model.Outcome]string
		if b.Description != "" {
			descriptions = map[model.Outcome]string{outcome: b.Description}
		}
		tree.AddNode(model.NewLeafNode(ids.next(), leafParent, []model.Outcome{outcome}, descriptions))
	}
}
