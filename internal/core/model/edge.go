package model

import "time"

// Pairing is an unordered PAIRS_WITH relationship. First and Second only reflect
// the order the pairing was created in.
type Pairing struct {
	UUID      string    `json:"uuid"`
	First     string    `json:"first"`
	Second    string    `json:"second"`
	Affinity  Affinity  `json:"affinity"`
	CreatedAt time.Time `json:"created_at"`
}

// Other returns the endpoint that is not name.
func (p Pairing) Other(name string) string {
	if p.First == name {
		return p.Second
	}
	return p.First
}
