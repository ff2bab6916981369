// Package flavortree folds flavor traversal paths into a single tree rooted at
// the queried ingredient.
package flavortree

import (
	"fmt"

	"github.com/agenthands/flavorgraph/internal/core/model"
)

// Builder accumulates paths into one tree. Paths sharing a prefix merge: a
// (parent, child name) pair seen again reuses the existing child.
type Builder struct {
	root *model.FlavorTree
}

func NewBuilder() *Builder {
	return &Builder{root: &model.FlavorTree{}}
}

// Add folds one path into the tree. The path is checked as a whole before the
// tree is touched, so a rejected path leaves the tree unchanged.
func (b *Builder) Add(path model.Path) error {
	weights, err := validate(path)
	if err != nil {
		return err
	}

	if b.root.Name == "" {
		b.root.Name = path[0].Name
		b.root.Affinity = model.RootAffinity
	}

	parent := b.root
	for i := 1; i < len(path); i++ {
		seg := path[i]
		switch seg.Kind {
		case model.PairingLink:
			name := path[i+1].Name
			child := parent.Child(name)
			if child == nil {
				child = parent.AddChild(model.NewFlavorTree(name, weights[i]))
			}
			parent = child
			i++
		case model.CategoryLink:
			// Only the terminal ingredient of a path carries a color.
			parent.CategoryColor = path[i+1].Color
			return nil
		case model.CategoryNode:
			parent.CategoryColor = seg.Color
			return nil
		}
	}
	return nil
}

// Tree returns the tree built so far. With no paths added its name is empty.
func (b *Builder) Tree() *model.FlavorTree {
	return b.root
}

// Build folds every path into a fresh tree.
func Build(paths []model.Path) (*model.FlavorTree, error) {
	b := NewBuilder()
	for i, p := range paths {
		if err := b.Add(p); err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
	}
	return b.Tree(), nil
}

// validate checks the shape ingredient (pairing ingredient)* [[category-link] category]
// and resolves the weight of every pairing link, keyed by segment index.
func validate(path model.Path) (map[int]string, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: %d elements", model.ErrMalformedPath, len(path))
	}
	if path[0].Kind != model.IngredientNode || path[0].Name == "" {
		return nil, fmt.Errorf("%w: path must start at a named ingredient", model.ErrMalformedPath)
	}

	weights := make(map[int]string)
	for i := 1; i < len(path); i++ {
		seg := path[i]
		switch seg.Kind {
		case model.PairingLink:
			if i+1 >= len(path) || path[i+1].Kind != model.IngredientNode || path[i+1].Name == "" {
				return nil, fmt.Errorf("%w: pairing at %d is not followed by an ingredient", model.ErrMalformedPath, i)
			}
			w, err := model.WeightOf(seg.Affinity)
			if err != nil {
				return nil, err
			}
			weights[i] = model.FormatWeight(w)
			i++
		case model.CategoryLink:
			if i+2 != len(path) || path[i+1].Kind != model.CategoryNode {
				return nil, fmt.Errorf("%w: category link at %d must be followed by the final category", model.ErrMalformedPath, i)
			}
			return weights, nil
		case model.CategoryNode:
			if i+1 != len(path) {
				return nil, fmt.Errorf("%w: category at %d is not the final element", model.ErrMalformedPath, i)
			}
			return weights, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %s at %d", model.ErrMalformedPath, seg.Kind, i)
		}
	}
	return weights, nil
}
