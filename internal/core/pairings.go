package core

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/flavorgraph/internal/core/flavortree"
	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/core/recency"
	"github.com/agenthands/flavorgraph/internal/logging"
	"github.com/agenthands/flavorgraph/internal/metrics"
	"github.com/agenthands/flavorgraph/internal/validation"
)

// NoTriosFound is the single entry returned by GetTrios when nothing matches.
const NoTriosFound = "No trios found"

// Graph is the storage collaborator of the pairing service.
type Graph interface {
	FindIngredient(ctx context.Context, name string) (*model.Ingredient, error)
	CreateIngredient(ctx context.Context, name, category string) (*model.Ingredient, error)
	CreatePairing(ctx context.Context, first, second *model.Ingredient, affinity model.Affinity) (*model.Pairing, bool, error)
	Trios(ctx context.Context, ingredient string) ([]model.TrioRow, error)
	FlavorPaths(ctx context.Context, ingredient string) ([]model.Path, error)
}

type PairingService struct {
	Graph  Graph
	Window *recency.Window
	Now    func() time.Time

	// pairs serializes AddPairing per unordered ingredient pair.
	pairs pairLocks
}

func NewPairingService(graph Graph, window *recency.Window) *PairingService {
	return &PairingService{
		Graph:  graph,
		Window: window,
		Now:    time.Now,
	}
}

// GetTrios lists every trio containing the ingredient once, as
// "first, second, third".
func (s *PairingService) GetTrios(ctx context.Context, ingredient string) ([]string, error) {
	rows, err := s.Graph.Trios(ctx, ingredient)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(rows))
	var trios []string
	for _, r := range rows {
		if _, ok := seen[r.RelID]; ok {
			continue
		}
		seen[r.RelID] = struct{}{}
		trios = append(trios, fmt.Sprintf("%s, %s, %s", r.FirstName, r.SecondName, r.ThirdName))
	}

	if len(trios) == 0 {
		return []string{NoTriosFound}, nil
	}
	return trios, nil
}

func (s *PairingService) GetFlavorTree(ctx context.Context, ingredient string) (*model.FlavorTree, error) {
	paths, err := s.Graph.FlavorPaths(ctx, ingredient)
	if err != nil {
		return nil, err
	}

	tree, err := flavortree.Build(paths)
	if err != nil {
		return nil, fmt.Errorf("failed to build flavor tree for %s: %w", ingredient, err)
	}
	metrics.FlavorTreeNodes.Observe(float64(tree.Size()))
	return tree, nil
}

// AddPairing creates the pairing and any missing ingredient. Submitting a pair
// that already exists, in either order, is a no-op.
func (s *PairingService) AddPairing(ctx context.Context, req model.PairRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %w", model.ErrInvalidPairing, err)
	}
	affinity, err := model.ParseAffinity(req.Affinity)
	if err != nil {
		return err
	}

	release, err := s.pairs.acquire(ctx, pairKey(req.Ingredient1, req.Ingredient2))
	if err != nil {
		return fmt.Errorf("failed to lock pairing %s/%s: %w", req.Ingredient1, req.Ingredient2, err)
	}
	defer release()
	return s.addPairing(ctx, req, affinity)
}

func (s *PairingService) addPairing(ctx context.Context, req model.PairRequest, affinity model.Affinity) error {
	var first, second *model.Ingredient
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if first, err = s.Graph.FindIngredient(gctx, req.Ingredient1); err != nil {
			return fmt.Errorf("failed to look up %s: %w", req.Ingredient1, err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if second, err = s.Graph.FindIngredient(gctx, req.Ingredient2); err != nil {
			return fmt.Errorf("failed to look up %s: %w", req.Ingredient2, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if first != nil && second != nil && first.PairsWith(second.Name) {
		metrics.PairingsSkipped.Inc()
		logging.Debug().Str("ingredient1", first.Name).Str("ingredient2", second.Name).Msg("pairing already exists")
		return nil
	}

	var err error
	if first == nil {
		if first, err = s.createIngredient(ctx, req.Ingredient1, req.Category1); err != nil {
			return err
		}
	}
	if second == nil {
		if second, err = s.createIngredient(ctx, req.Ingredient2, req.Category2); err != nil {
			return err
		}
	}

	pairing, created, err := s.Graph.CreatePairing(ctx, first, second, affinity)
	if err != nil {
		return err
	}
	if !created {
		metrics.PairingsSkipped.Inc()
		return nil
	}
	first.Pairings = append(first.Pairings, *pairing)
	second.Pairings = append(second.Pairings, *pairing)
	metrics.PairingsCreated.Inc()
	logging.Info().
		Str("ingredient1", first.Name).
		Str("ingredient2", second.Name).
		Str("affinity", string(affinity)).
		Msg("pairing created")

	if _, _, err := s.Window.Record(ctx, first.Name, second.Name, s.Now()); err != nil {
		return fmt.Errorf("failed to record latest pairing: %w", err)
	}
	return nil
}

func (s *PairingService) createIngredient(ctx context.Context, name, category string) (*model.Ingredient, error) {
	ing, err := s.Graph.CreateIngredient(ctx, name, category)
	if err != nil {
		return nil, err
	}
	metrics.IngredientsCreated.Inc()
	return ing, nil
}

// GetLatestPairings returns the recency window newest first.
func (s *PairingService) GetLatestPairings() []model.LatestPairing {
	return s.Window.ListDescending()
}

// pairKey is the same for (a, b) and (b, a).
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
