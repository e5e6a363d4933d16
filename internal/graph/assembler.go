package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/covenantlabs/guidegraph/internal/core"
	"github.com/covenantlabs/guidegraph/internal/core/model"
)

// AssembleStats counts what one assembly run wrote.
type AssembleStats struct {
	Nodes  int `json:"nodes"`
	Edges  int `json:"edges"`
	Failed int `json:"failed"`
}

// Assembler writes a processed document into the knowledge graph. Writes
// are individually fallible: a failed record is logged and counted while
// assembly moves on, so one bad node never loses the document.
type Assembler struct {
	Driver Driver

	log *slog.Logger
}

func NewAssembler(d Driver, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{Driver: d, log: log}
}

// Assemble persists the navigation tree, the chunk set and the decision
// forest of one processed document, keyed by documentID. An empty
// documentID falls back to the id minted during processing.
func (a *Assembler) Assemble(ctx context.Context, documentID string, res *core.ProcessResult) (AssembleStats, error) {
	var stats AssembleStats
	if res == nil || res.Navigation == nil || res.Chunking == nil || res.Validation == nil {
		return stats, fmt.Errorf("incomplete process result")
	}
	if documentID == "" {
		documentID = res.DocumentID
	}

	a.saveNavigation(ctx, &stats, documentID, res)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	a.saveChunks(ctx, &stats, documentID, res)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	a.saveTrees(ctx, &stats, documentID, res)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	a.log.Info("document assembled",
		"document_id", documentID,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"failed", stats.Failed)
	return stats, nil
}

func (a *Assembler) saveNavigation(ctx context.Context, st *AssembleStats, docID string, res *core.ProcessResult) {
	s := res.Navigation
	for _, n := range s.OrderedNodes() {
		if n.ID == s.RootID {
			a.runNode(ctx, st, "navigation_root", SaveNavigationRootQuery, map[string]any{
				"uid":           uid(docID, n.ID),
				"doc_id":        docID,
				"node_id":       n.ID,
				"title":         n.Title,
				"document_name": s.Metadata.DocumentName,
				"format":        string(s.Metadata.Format),
				"extracted_at":  s.Metadata.ExtractedAt.UTC(),
				"node_count":    len(s.Nodes),
				"quality":       res.Validation.OverallQuality,
				"valid":         res.Validation.IsValid(),
			})
			continue
		}
		a.runNode(ctx, st, "navigation_section", SaveNavigationSectionQuery, map[string]any{
			"uid":                uid(docID, n.ID),
			"doc_id":             docID,
			"node_id":            n.ID,
			"title":              n.Title,
			"level":              string(n.Level),
			"section_number":     n.SectionNumber,
			"decision_indicator": n.Metadata.DecisionIndicator,
			"confidence":         n.ConfidenceScore,
		})
	}
	for _, n := range s.OrderedNodes() {
		for _, childID := range n.Children {
			a.runEdge(ctx, st, "contains", SaveContainsEdgeQuery, map[string]any{
				"from_uid": uid(docID, n.ID),
				"to_uid":   uid(docID, childID),
				"doc_id":   docID,
			})
		}
	}
}

func (a *Assembler) saveChunks(ctx context.Context, st *AssembleStats, docID string, res *core.ProcessResult) {
	for i := range res.Chunking.Chunks {
		c := &res.Chunking.Chunks[i]
		a.runNode(ctx, st, "chunk", SaveChunkQuery, map[string]any{
			"uid":             uid(docID, c.ID),
			"doc_id":          docID,
			"chunk_id":        c.ID,
			"content":         c.Content,
			"chunk_type":      string(c.Type),
			"token_count":     c.TokenCount,
			"navigation_path": stringValues(c.Context.NavigationPath),
			"quality":         c.Context.QualityScore,
		})
		if c.NodeID != "" {
			a.runEdge(ctx, st, "has_chunk", SaveHasChunkEdgeQuery, map[string]any{
				"from_uid": uid(docID, c.NodeID),
				"to_uid":   uid(docID, c.ID),
				"doc_id":   docID,
			})
		}
	}
	for _, rel := range res.Chunking.Relationships {
		q, ok := chunkEdgeQuery(rel.Type)
		if !ok {
			st.Failed++
			a.log.Warn("unknown chunk relationship type",
				"type", rel.Type, "source", rel.SourceChunkID)
			continue
		}
		a.runEdge(ctx, st, string(rel.Type), q, map[string]any{
			"from_uid":   uid(docID, rel.SourceChunkID),
			"to_uid":     uid(docID, rel.TargetChunkID),
			"doc_id":     docID,
			"confidence": rel.Confidence,
		})
	}
}

func (a *Assembler) saveTrees(ctx context.Context, st *AssembleStats, docID string, res *core.ProcessResult) {
	for _, tree := range res.Trees {
		if tree == nil || len(tree.Nodes) == 0 {
			continue
		}
		ids := sortedNodeIDs(tree.Nodes)
		for _, id := range ids {
			n := tree.Nodes[id]
			q, ok := decisionNodeQuery(n.Type)
			if !ok {
				st.Failed++
				a.log.Warn("unknown decision node type",
					"tree", tree.ID, "node", n.ID, "type", n.Type)
				continue
			}
			params := map[string]any{
				"uid":     uid(docID, n.ID),
				"doc_id":  docID,
				"node_id": n.ID,
				"tree_id": tree.ID,
			}
			switch n.Type {
			case model.DecisionRoot:
				params["condition"] = n.Condition
				params["section_id"] = tree.SectionID
				params["source"] = string(tree.Source)
			case model.DecisionBranch:
				params["condition"] = n.Condition
			case model.DecisionLeaf:
				params["outcomes"] = outcomeValues(n.Outcomes)
			}
			a.runNode(ctx, st, "decision_node", q, params)
		}
		for _, id := range ids {
			n := tree.Nodes[id]
			for _, childID := range n.ChildIDs {
				if tree.Nodes[childID] == nil {
					continue
				}
				a.runEdge(ctx, st, "decision_branch", SaveDecisionEdgeQuery, map[string]any{
					"from_uid": uid(docID, n.ID),
					"to_uid":   uid(docID, childID),
					"doc_id":   docID,
				})
			}
		}
		if tree.SectionID != "" && res.Navigation.Node(tree.SectionID) != nil {
			a.runEdge(ctx, st, "has_decision_tree", SaveHasTreeEdgeQuery, map[string]any{
				"from_uid": uid(docID, tree.SectionID),
				"to_uid":   uid(docID, tree.RootID),
				"doc_id":   docID,
				"tree_id":  tree.ID,
			})
		}
	}
}

func (a *Assembler) runNode(ctx context.Context, st *AssembleStats, kind, query string, params map[string]any) {
	if ctx.Err() != nil {
		return
	}
	if _, err := a.Driver.ExecuteQuery(ctx, query, params); err != nil {
		st.Failed++
		a.log.Warn("graph node write failed", "kind", kind, "uid", params["uid"], "error", err)
		return
	}
	st.Nodes++
}

func (a *Assembler) runEdge(ctx context.Context, st *AssembleStats, kind, query string, params map[string]any) {
	if ctx.Err() != nil {
		return
	}
	if _, err := a.Driver.ExecuteQuery(ctx, query, params); err != nil {
		st.Failed++
		a.log.Warn("graph edge write failed",
			"kind", kind, "from", params["from_uid"], "to", params["to_uid"], "error", err)
		return
	}
	st.Edges++
}

func uid(docID, id string) string { return docID + ":" + id }

// The driver serializes plain []any lists; typed string slices are
// converted before they reach it.
func stringValues(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func outcomeValues(outcomes []model.Outcome) []any {
	out := make([]any, len(outcomes))
	for i, o := range outcomes {
		out[i] = string(o)
	}
	return out
}

func sortedNodeIDs(nodes map[string]*model.DecisionTreeNode) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
