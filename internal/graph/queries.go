package graph

import "github.com/covenantlabs/guidegraph/internal/core/model"

// Every node is keyed by uid = "<document id>:<stable node id>", so
// reprocessing a document upserts in place instead of duplicating it.
const (
	SaveNavigationRootQuery = `
		MERGE (n:NavigationRoot {uid: $uid})
		SET n.doc_id = $doc_id,
			n.node_id = $node_id,
			n.title = $title,
			n.document_name = $document_name,
			n.format = $format,
			n.extracted_at = $extracted_at,
			n.node_count = $node_count,
			n.quality = $quality,
			n.valid = $valid
		RETURN n.uid AS uid
	`

	SaveNavigationSectionQuery = `
		MERGE (n:NavigationSection {uid: $uid})
		SET n.doc_id = $doc_id,
			n.node_id = $node_id,
			n.title = $title,
			n.level = $level,
			n.section_number = $section_number,
			n.decision_indicator = $decision_indicator,
			n.confidence = $confidence
		RETURN n.uid AS uid
	`

	SaveChunkQuery = `
		MERGE (c:Chunk {uid: $uid})
		SET c.doc_id = $doc_id,
			c.chunk_id = $chunk_id,
			c.content = $content,
			c.chunk_type = $chunk_type,
			c.token_count = $token_count,
			c.navigation_path = $navigation_path,
			c.quality = $quality
		RETURN c.uid AS uid
	`

	SaveDecisionRootQuery = `
		MERGE (n:DecisionRoot {uid: $uid})
		SET n.doc_id = $doc_id,
			n.node_id = $node_id,
			n.tree_id = $tree_id,
			n.condition = $condition,
			n.section_id = $section_id,
			n.source = $source
		RETURN n.uid AS uid
	`

	SaveDecisionBranchQuery = `
		MERGE (n:DecisionBranch {uid: $uid})
		SET n.doc_id = $doc_id,
			n.node_id = $node_id,
			n.tree_id = $tree_id,
			n.condition = $condition
		RETURN n.uid AS uid
	`

	SaveDecisionLeafQuery = `
		MERGE (n:DecisionLeaf {uid: $uid})
		SET n.doc_id = $doc_id,
			n.node_id = $node_id,
			n.tree_id = $tree_id,
			n.outcomes = $outcomes
		RETURN n.uid AS uid
	`

	SaveContainsEdgeQuery = `
		MATCH (p:NavigationRoot|NavigationSection {uid: $from_uid})
		MATCH (c:NavigationSection {uid: $to_uid})
		MERGE (p)-[r:CONTAINS]->(c)
		SET r.doc_id = $doc_id
		RETURN c.uid AS uid
	`

	SaveHasChunkEdgeQuery = `
		MATCH (s:NavigationRoot|NavigationSection {uid: $from_uid})
		MATCH (c:Chunk {uid: $to_uid})
		MERGE (s)-[r:HAS_CHUNK]->(c)
		SET r.doc_id = $doc_id
		RETURN c.uid AS uid
	`

	SaveSequentialEdgeQuery = `
		MATCH (a:Chunk {uid: $from_uid})
		MATCH (b:Chunk {uid: $to_uid})
		MERGE (a)-[r:SEQUENTIAL]->(b)
		SET r.doc_id = $doc_id,
			r.confidence = $confidence
		RETURN b.uid AS uid
	`

	SaveParentChildEdgeQuery = `
		MATCH (a:Chunk {uid: $from_uid})
		MATCH (b:Chunk {uid: $to_uid})
		MERGE (a)-[r:PARENT_CHILD]->(b)
		SET r.doc_id = $doc_id,
			r.confidence = $confidence
		RETURN b.uid AS uid
	`

	SaveReferencesEdgeQuery = `
		MATCH (a:Chunk {uid: $from_uid})
		MATCH (b:Chunk {uid: $to_uid})
		MERGE (a)-[r:REFERENCES]->(b)
		SET r.doc_id = $doc_id,
			r.confidence = $confidence
		RETURN b.uid AS uid
	`

	SaveChunkDecisionEdgeQuery = `
		MATCH (a:Chunk {uid: $from_uid})
		MATCH (b:Chunk {uid: $to_uid})
		MERGE (a)-[r:DECISION_BRANCH]->(b)
		SET r.doc_id = $doc_id,
			r.confidence = $confidence
		RETURN b.uid AS uid
	`

	SaveHasTreeEdgeQuery = `
		MATCH (s:NavigationRoot|NavigationSection {uid: $from_uid})
		MATCH (t:DecisionRoot {uid: $to_uid})
		MERGE (s)-[r:HAS_DECISION_TREE]->(t)
		SET r.doc_id = $doc_id,
			r.tree_id = $tree_id
		RETURN t.uid AS uid
	`

	SaveDecisionEdgeQuery = `
		MATCH (p:DecisionRoot|DecisionBranch {uid: $from_uid})
		MATCH (c:DecisionBranch|DecisionLeaf {uid: $to_uid})
		MERGE (p)-[r:DECISION_BRANCH]->(c)
		SET r.doc_id = $doc_id
		RETURN c.uid AS uid
	`
)

// chunkEdgeQuery maps a chunk relationship type onto its edge query.
func chunkEdgeQuery(t model.RelationshipType) (string, bool) {
	switch t {
	case model.RelSequential:
		return SaveSequentialEdgeQuery, true
	case model.RelParentChild:
		return SaveParentChildEdgeQuery, true
	case model.RelReferences:
		return SaveReferencesEdgeQuery, true
	case model.RelDecisionBranch:
		return SaveChunkDecisionEdgeQuery, true
	}
	return "", false
}

// decisionNodeQuery maps a decision node variant onto its save query.
func decisionNodeQuery(t model.DecisionType) (string, bool) {
	switch t {
	case model.DecisionRoot:
		return SaveDecisionRootQuery, true
	case model.DecisionBranch:
		return SaveDecisionBranchQuery, true
	case model.DecisionLeaf:
		return SaveDecisionLeafQuery, true
	}
	return "", false
}
