package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/flavorgraph/internal/core/model"
)

// MockDriver answers queries from ResultQueue in order, then with MockResult.
type MockDriver struct {
	QueryExecuted string
	QueryParams   map[string]interface{}
	Queries       []string
	MockResult    neo4j.EagerResult
	ResultQueue   []neo4j.EagerResult
	Err           error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.QueryExecuted = query
	m.QueryParams = params
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if len(m.ResultQueue) > 0 {
		res := m.ResultQueue[0]
		m.ResultQueue = m.ResultQueue[1:]
		return res, nil
	}
	return m.MockResult, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func record(keys []string, values ...interface{}) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

// MemoryGraph is an in-memory Graph.
type MemoryGraph struct {
	mu          sync.Mutex
	ingredients map[string]*model.Ingredient
	pairings    []model.Pairing
	TrioRows    []model.TrioRow
	Paths       []model.Path
	Err         error

	CreatedIngredients int
	CreatedPairings    int
}

func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{ingredients: make(map[string]*model.Ingredient)}
}

func (m *MemoryGraph) FindIngredient(ctx context.Context, name string) (*model.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	ing, ok := m.ingredients[name]
	if !ok {
		return nil, nil
	}
	cp := *ing
	cp.Pairings = nil
	for _, p := range m.pairings {
		if p.First == name || p.Second == name {
			cp.Pairings = append(cp.Pairings, p)
		}
	}
	return &cp, nil
}

func (m *MemoryGraph) CreateIngredient(ctx context.Context, name, category string) (*model.Ingredient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.CreatedIngredients++
	ing := &model.Ingredient{Name: name, Category: model.Category{Name: category}}
	m.ingredients[name] = ing
	return &model.Ingredient{Name: name, Category: ing.Category}, nil
}

func (m *MemoryGraph) CreatePairing(ctx context.Context, first, second *model.Ingredient, affinity model.Affinity) (*model.Pairing, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, false, m.Err
	}
	m.CreatedPairings++
	p := model.Pairing{
		UUID:     fmt.Sprintf("pairing-%d", m.CreatedPairings),
		First:    first.Name,
		Second:   second.Name,
		Affinity: affinity,
	}
	m.pairings = append(m.pairings, p)
	return &p, true, nil
}

func (m *MemoryGraph) Trios(ctx context.Context, ingredient string) ([]model.TrioRow, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.TrioRows, nil
}

func (m *MemoryGraph) FlavorPaths(ctx context.Context, ingredient string) ([]model.Path, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Paths, nil
}

func (m *MemoryGraph) Pairings() []model.Pairing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Pairing(nil), m.pairings...)
}
