package core

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/driver"
)

// LatestPairingStore persists the recency window as LatestPairing nodes.
type LatestPairingStore struct {
	graph *FlavorGraph
}

func NewLatestPairingStore(g *FlavorGraph) *LatestPairingStore {
	return &LatestPairingStore{graph: g}
}

func (s *LatestPairingStore) List(ctx context.Context) ([]model.LatestPairing, error) {
	res, err := s.graph.query(ctx, "list_latest_pairings", driver.ListLatestPairingsQuery, nil)
	if err != nil {
		return nil, err
	}

	out := make([]model.LatestPairing, 0, len(res.Records))
	for _, rec := range res.Records {
		p := model.LatestPairing{
			UUID:        getString(rec, "uuid"),
			Ingredient1: getString(rec, "ingredient1"),
			Ingredient2: getString(rec, "ingredient2"),
		}
		if v, ok := rec.Get("date_added"); ok {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("latest pairing %s: date_added is %T", p.UUID, v)
			}
			p.DateAdded = t.UTC()
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *LatestPairingStore) Save(ctx context.Context, p model.LatestPairing) error {
	params := map[string]interface{}{
		"uuid":        p.UUID,
		"ingredient1": p.Ingredient1,
		"ingredient2": p.Ingredient2,
		"date_added":  p.DateAdded,
	}
	_, err := s.graph.query(ctx, "save_latest_pairing", driver.SaveLatestPairingQuery, params)
	return err
}

func (s *LatestPairingStore) Delete(ctx context.Context, p model.LatestPairing) error {
	_, err := s.graph.query(ctx, "delete_latest_pairing", driver.DeleteLatestPairingQuery, map[string]interface{}{"uuid": p.UUID})
	return err
}
