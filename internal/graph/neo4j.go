package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Neo4jDriver struct {
	Driver neo4j.DriverWithContext
}

func NewNeo4jDriver(uri, username, password string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Connected to Neo4j")
	return &Neo4jDriver{Driver: driver}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates the lookup indices every assembler write depends on.
// Failures are logged and skipped so an index that already exists on an
// older server never blocks startup.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX navigation_root_uid IF NOT EXISTS FOR (n:NavigationRoot) ON (n.uid)",
		"CREATE INDEX navigation_section_uid IF NOT EXISTS FOR (n:NavigationSection) ON (n.uid)",
		"CREATE INDEX chunk_uid IF NOT EXISTS FOR (n:Chunk) ON (n.uid)",
		"CREATE INDEX decision_root_uid IF NOT EXISTS FOR (n:DecisionRoot) ON (n.uid)",
		"CREATE INDEX decision_branch_uid IF NOT EXISTS FOR (n:DecisionBranch) ON (n.uid)",
		"CREATE INDEX decision_leaf_uid IF NOT EXISTS FOR (n:DecisionLeaf) ON (n.uid)",

		"CREATE INDEX navigation_section_doc IF NOT EXISTS FOR (n:NavigationSection) ON (n.doc_id)",
		"CREATE INDEX chunk_doc IF NOT EXISTS FOR (n:Chunk) ON (n.doc_id)",
		"CREATE INDEX decision_root_doc IF NOT EXISTS FOR (n:DecisionRoot) ON (n.doc_id)",
	}

	for _, q := range queries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			log.Printf("Warning: failed to create index '%s': %v", q, err)
		}
	}

	return nil
}
