package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Affinity is a named strength of flavor compatibility.
type Affinity string

const (
	Weak      Affinity = "WEAK"
	Good      Affinity = "GOOD"
	Strong    Affinity = "STRONG"
	Excellent Affinity = "EXCELLENT"
)

// RootAffinity is the weight carried by the queried ingredient at the root of a
// flavor tree; it has no incoming pairing.
const RootAffinity = "1"

var affinityScale = map[Affinity]float64{
	Weak:      0.25,
	Good:      0.5,
	Strong:    0.75,
	Excellent: 0.9,
}

// Levels returns every affinity level ordered from weakest to strongest.
func Levels() []Affinity {
	return []Affinity{Weak, Good, Strong, Excellent}
}

// WeightOf maps a level name to its numeric weight.
func WeightOf(level string) (float64, error) {
	w, ok := affinityScale[Affinity(level)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAffinity, level)
	}
	return w, nil
}

// ParseAffinity accepts level names case-insensitively.
func ParseAffinity(s string) (Affinity, error) {
	a := Affinity(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := affinityScale[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAffinity, s)
	}
	return a, nil
}

func (a Affinity) Weight() (float64, error) {
	return WeightOf(string(a))
}

// FormatWeight renders a weight the way flavor trees carry it.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
