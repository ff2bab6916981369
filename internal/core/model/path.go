package model

// SegmentKind tags one element of a flavor path.
type SegmentKind int

const (
	IngredientNode SegmentKind = iota
	PairingLink
	CategoryLink
	CategoryNode
)

func (k SegmentKind) String() string {
	switch k {
	case IngredientNode:
		return "ingredient"
	case PairingLink:
		return "pairing"
	case CategoryLink:
		return "category-link"
	case CategoryNode:
		return "category"
	default:
		return "unknown"
	}
}

// Segment is one typed element of a traversal result. Name is set on nodes,
// Affinity on pairing links and Color on category nodes.
type Segment struct {
	Kind     SegmentKind
	Name     string
	Affinity string
	Color    string
}

// Path is a traversal from the queried ingredient:
// ingredient (pairing ingredient)* category-link category.
type Path []Segment

func IngredientSegment(name string) Segment {
	return Segment{Kind: IngredientNode, Name: name}
}

func PairingSegment(affinity string) Segment {
	return Segment{Kind: PairingLink, Affinity: affinity}
}

func CategoryLinkSegment() Segment {
	return Segment{Kind: CategoryLink}
}

func CategorySegment(name, color string) Segment {
	return Segment{Kind: CategoryNode, Name: name, Color: color}
}
