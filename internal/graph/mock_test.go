package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// MockDriver records every query. When FailQuery is set, only that query
// fails; otherwise Err fails all of them.
type MockDriver struct {
	Executed  []ExecutedQuery
	FailQuery string
	Err       error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	m.Executed = append(m.Executed, ExecutedQuery{Query: query, Params: params})
	if m.Err != nil && (m.FailQuery == "" || m.FailQuery == query) {
		return neo4j.EagerResult{}, m.Err
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}
