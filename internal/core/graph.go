package core

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/flavorgraph/internal/config"
	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/driver"
	"github.com/agenthands/flavorgraph/internal/metrics"
)

const (
	labelCategory   = "Category"
	relHasCategory  = "HAS_CATEGORY"
	relPairsWith    = "PAIRS_WITH"
	defaultMaxDepth = 3
)

// FlavorGraph is the Neo4j-backed graph of ingredients, categories and pairings.
type FlavorGraph struct {
	Driver   driver.GraphDriver
	MaxDepth int

	UUIDGenerator func() string
	Now           func() time.Time
}

func NewFlavorGraph(d driver.GraphDriver, maxDepth int) *FlavorGraph {
	if maxDepth < 1 {
		maxDepth = defaultMaxDepth
	}
	return &FlavorGraph{
		Driver:        d,
		MaxDepth:      maxDepth,
		UUIDGenerator: func() string { return uuid.New().String() },
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

func (g *FlavorGraph) BuildIndices(ctx context.Context) error {
	return g.Driver.BuildIndices(ctx)
}

// SeedCategories creates or recolors the configured categories.
func (g *FlavorGraph) SeedCategories(ctx context.Context, categories []config.CategoryConfig) error {
	for _, c := range categories {
		params := map[string]interface{}{
			"name":  c.Name,
			"color": c.Color,
		}
		if _, err := g.query(ctx, "save_category", driver.SaveCategoryQuery, params); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	return nil
}

// FindIngredient returns the first ingredient with the given name, or nil.
func (g *FlavorGraph) FindIngredient(ctx context.Context, name string) (*model.Ingredient, error) {
	res, err := g.query(ctx, "find_ingredient", driver.FindIngredientQuery, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	if len(res.Records) == 0 {
		return nil, nil
	}

	rec := res.Records[0]
	ing := &model.Ingredient{
		Name: getString(rec, "name"),
		Category: model.Category{
			Name:  getString(rec, "category"),
			Color: getString(rec, "color"),
		},
	}

	raw, _ := rec.Get("pairings")
	list, _ := raw.([]interface{})
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		p := model.Pairing{
			UUID:     asString(m["uuid"]),
			First:    asString(m["first"]),
			Second:   asString(m["second"]),
			Affinity: model.Affinity(asString(m["affinity"])),
		}
		if t, ok := m["created_at"].(time.Time); ok {
			p.CreatedAt = t
		}
		ing.Pairings = append(ing.Pairings, p)
	}
	return ing, nil
}

// CreateIngredient merges an ingredient under the given category. An ingredient
// that already has a category keeps it.
func (g *FlavorGraph) CreateIngredient(ctx context.Context, name, category string) (*model.Ingredient, error) {
	params := map[string]interface{}{
		"name":       name,
		"category":   category,
		"created_at": g.Now(),
	}
	res, err := g.query(ctx, "save_ingredient", driver.SaveIngredientQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to save ingredient %s: %w", name, err)
	}

	ing := &model.Ingredient{Name: name, Category: model.Category{Name: category}}
	if len(res.Records) > 0 {
		rec := res.Records[0]
		ing.Category = model.Category{Name: getString(rec, "category"), Color: getString(rec, "color")}
	}
	return ing, nil
}

// CreatePairing merges an undirected pairing. created is false when a pairing
// between the two ingredients was already stored; the stored one is returned.
func (g *FlavorGraph) CreatePairing(ctx context.Context, first, second *model.Ingredient, affinity model.Affinity) (*model.Pairing, bool, error) {
	id := g.UUIDGenerator()
	now := g.Now()
	params := map[string]interface{}{
		"first":      first.Name,
		"second":     second.Name,
		"uuid":       id,
		"affinity":   string(affinity),
		"created_at": now,
	}
	res, err := g.query(ctx, "save_pairing", driver.SavePairingQuery, params)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save pairing %s-%s: %w", first.Name, second.Name, err)
	}
	if len(res.Records) == 0 {
		return nil, false, fmt.Errorf("failed to save pairing %s-%s: ingredients not found", first.Name, second.Name)
	}

	rec := res.Records[0]
	p := &model.Pairing{
		UUID:      getString(rec, "uuid"),
		First:     getString(rec, "first"),
		Second:    getString(rec, "second"),
		Affinity:  model.Affinity(getString(rec, "affinity")),
		CreatedAt: now,
	}
	if v, ok := rec.Get("created_at"); ok {
		if t, ok := v.(time.Time); ok {
			p.CreatedAt = t
		}
	}
	return p, p.UUID == id, nil
}

func (g *FlavorGraph) Trios(ctx context.Context, ingredient string) ([]model.TrioRow, error) {
	res, err := g.query(ctx, "get_trios", driver.GetTriosQuery, map[string]interface{}{"name": ingredient})
	if err != nil {
		return nil, err
	}

	rows := make([]model.TrioRow, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, model.TrioRow{
			RelID:      getString(rec, "relId"),
			FirstName:  getString(rec, "firstName"),
			SecondName: getString(rec, "secondName"),
			ThirdName:  getString(rec, "thirdName"),
		})
	}
	return rows, nil
}

func (g *FlavorGraph) FlavorPaths(ctx context.Context, ingredient string) ([]model.Path, error) {
	res, err := g.query(ctx, "get_flavor_paths", driver.FlavorPathsQuery(g.MaxDepth), map[string]interface{}{"name": ingredient})
	if err != nil {
		return nil, err
	}

	paths := make([]model.Path, 0, len(res.Records))
	for i, rec := range res.Records {
		raw, _ := rec.Get("p")
		p, ok := raw.(neo4j.Path)
		if !ok {
			return nil, fmt.Errorf("%w: record %d holds %T, not a path", model.ErrMalformedPath, i, raw)
		}
		path, err := decodePath(p)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (g *FlavorGraph) query(ctx context.Context, op, cypher string, params map[string]interface{}) (neo4j.EagerResult, error) {
	start := time.Now()
	res, err := g.Driver.ExecuteQuery(ctx, cypher, params)
	metrics.ObserveQuery(op, start, err)
	return res, err
}

// decodePath turns a Neo4j path into typed segments in traversal order.
func decodePath(p neo4j.Path) (model.Path, error) {
	if len(p.Nodes) != len(p.Relationships)+1 {
		return nil, fmt.Errorf("%w: %d nodes for %d relationships", model.ErrMalformedPath, len(p.Nodes), len(p.Relationships))
	}

	out := make(model.Path, 0, len(p.Nodes)+len(p.Relationships))
	for i, n := range p.Nodes {
		if i > 0 {
			seg, err := decodeRelationship(p.Relationships[i-1])
			if err != nil {
				return nil, err
			}
			out = append(out, seg)
		}
		out = append(out, decodeNode(n))
	}
	return out, nil
}

func decodeNode(n neo4j.Node) model.Segment {
	name := asString(n.Props["name"])
	if slices.Contains(n.Labels, labelCategory) {
		return model.CategorySegment(name, asString(n.Props["color"]))
	}
	return model.IngredientSegment(name)
}

func decodeRelationship(r neo4j.Relationship) (model.Segment, error) {
	switch r.Type {
	case relHasCategory:
		return model.CategoryLinkSegment(), nil
	case relPairsWith:
		return model.PairingSegment(asString(r.Props["affinity"])), nil
	default:
		return model.Segment{}, fmt.Errorf("%w: unexpected relationship %s", model.ErrMalformedPath, r.Type)
	}
}

func getString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	return asString(v)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
