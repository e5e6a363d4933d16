package chunking

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

var sectionRefRe = regexp.MustCompile(`(?i)\bsections?\s+(\d+(?:\.\d+)*)`)

// buildRelationships derives the chunk edge set: reading order inside a
// section, hierarchy edges mirroring the outline, and cross-references
// where a chunk cites another section by number or, for decision chunks, by
// title. The same pair may carry several edge types.
func buildRelationships(s *model.NavigationStructure, chunks []model.SemanticChunk) []model.ChunkRelationship {
	if len(chunks) == 0 {
		return nil
	}

	byNode := make(map[string][]int, len(chunks))
	for i, ch := range chunks {
		byNode[ch.NodeID] = append(byNode[ch.NodeID], i)
	}

	var rels []model.ChunkRelationship
	seen := map[string]bool{}
	add := func(src, dst string, typ model.RelationshipType, conf float64, evidence ...string) {
		if src == dst {
			return
		}
		key := src + "|" + dst + "|" + string(typ)
		if seen[key] {
			return
		}
		seen[key] = true
		rels = append(rels, model.ChunkRelationship{
			SourceChunkID: src,
			TargetChunkID: dst,
			Type:          typ,
			Confidence:    conf,
			Evidence:      evidence,
		})
	}

	ordered := s.OrderedNodes()

	// Adjacent parts of one section read in order; adjacent decision
	// parts additionally branch from the same rule block.
	for _, n := range ordered {
		idxs := byNode[n.ID]
		for k := 0; k+1 < len(idxs); k++ {
			a, b := chunks[idxs[k]], chunks[idxs[k+1]]
			add(a.ID, b.ID, model.RelSequential, 1.0, "adjacent parts of "+sectionLabel(n))
			if a.Type == model.ChunkDecision && b.Type == model.ChunkDecision {
				add(a.ID, b.ID, model.RelDecisionBranch, 0.85, "rule block split in "+sectionLabel(n))
			}
		}
	}

	// Hierarchy edges: first chunk of the parent to first chunk of each
	// child that produced chunks.
	for _, n := range ordered {
		pIdxs := byNode[n.ID]
		if len(pIdxs) == 0 {
			continue
		}
		for _, childID := range n.Children {
			cIdxs := byNode[childID]
			if len(cIdxs) == 0 {
				continue
			}
			add(chunks[pIdxs[0]].ID, chunks[cIdxs[0]].ID, model.RelParentChild, 1.0,
				sectionLabel(n)+" contains "+sectionLabel(s.Nodes[childID]))
		}
	}

	bySection := map[string]string{}
	for _, n := range ordered {
		if n.SectionNumber != "" {
			bySection[n.SectionNumber] = n.ID
		}
	}
	for _, ch := range chunks {
		for _, m := range sectionRefRe.FindAllStringSubmatch(ch.Content, -1) {
			targetNode, ok := bySection[m[1]]
			if !ok || targetNode == ch.NodeID {
				continue
			}
			tIdxs := byNode[targetNode]
			if len(tIdxs) == 0 {
				continue
			}
			add(ch.ID, chunks[tIdxs[0]].ID, model.RelReferences, 0.9, m[0])
		}

		// Title mentions are weaker evidence and only worth scanning in
		// decision chunks, where rules cite other rules by name.
		if ch.Type != model.ChunkDecision {
			continue
		}
		lower := strings.ToLower(ch.Content)
		for _, n := range ordered {
			if n.ID == ch.NodeID || n.ID == s.RootID || len(n.Title) < 8 {
				continue
			}
			if !strings.Contains(lower, strings.ToLower(n.Title)) {
				continue
			}
			tIdxs := byNode[n.ID]
			if len(tIdxs) == 0 {
				continue
			}
			add(ch.ID, chunks[tIdxs[0]].ID, model.RelReferences, 0.7, n.Title)
		}
	}

	return rels
}

func sectionLabel(n *model.NavigationNode) string {
	if n.SectionNumber != "" {
		return "section " + n.SectionNumber
	}
	return n.Title
}
