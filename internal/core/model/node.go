package model

import "time"

// Ingredient is identified by its name. Pairings holds both directions of every
// PAIRS_WITH relationship the ingredient takes part in.
type Ingredient struct {
	Name     string    `json:"name"`
	Category Category  `json:"category"`
	Pairings []Pairing `json:"pairings,omitempty"`
}

// PairsWith reports whether a pairing with the named ingredient already exists,
// regardless of which side of the stored pairing it sits on.
func (i *Ingredient) PairsWith(name string) bool {
	for _, p := range i.Pairings {
		if p.First == name || p.Second == name {
			return true
		}
	}
	return false
}

type Category struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// LatestPairing records one pairing creation for the recency window.
type LatestPairing struct {
	UUID        string    `json:"uuid"`
	Ingredient1 string    `json:"ingredient1"`
	Ingredient2 string    `json:"ingredient2"`
	DateAdded   time.Time `json:"date_added"`
}

// PairRequest is the caller-facing input of AddPairing.
type PairRequest struct {
	Ingredient1 string `json:"ingredient1" validate:"required,max=200"`
	Category1   string `json:"category1" validate:"required,max=200"`
	Ingredient2 string `json:"ingredient2" validate:"required,max=200,nefield=Ingredient1"`
	Category2   string `json:"category2" validate:"required,max=200"`
	Affinity    string `json:"affinity" validate:"required"`
}

// TrioRow is one raw row of the trio query.
type TrioRow struct {
	RelID      string
	FirstName  string
	SecondName string
	ThirdName  string
}
