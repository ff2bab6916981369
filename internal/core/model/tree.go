package model

// FlavorTree is one node of a flavor tree. Children are unique by name.
type FlavorTree struct {
	Name          string        `json:"name"`
	Affinity      string        `json:"affinity"`
	CategoryColor string        `json:"catColor,omitempty"`
	Children      []*FlavorTree `json:"children,omitempty"`

	byName map[string]*FlavorTree
}

func NewFlavorTree(name, affinity string) *FlavorTree {
	return &FlavorTree{Name: name, Affinity: affinity}
}

// Child returns the direct child with the given name, or nil.
func (t *FlavorTree) Child(name string) *FlavorTree {
	if t.byName == nil {
		return nil
	}
	return t.byName[name]
}

// AddChild attaches c unless a child with the same name exists, and returns
// whichever node now holds that name.
func (t *FlavorTree) AddChild(c *FlavorTree) *FlavorTree {
	if existing := t.Child(c.Name); existing != nil {
		return existing
	}
	if t.byName == nil {
		t.byName = make(map[string]*FlavorTree)
	}
	t.byName[c.Name] = c
	t.Children = append(t.Children, c)
	return c
}

// Size counts the nodes of the tree, root included. An unnamed tree is empty.
func (t *FlavorTree) Size() int {
	if t == nil || t.Name == "" {
		return 0
	}
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}
