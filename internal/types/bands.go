package types

import (
	"math"
	"sort"
)

type (
	// Named inclusive score range
	Band struct {
		Name string  `json:"name" validate:"required"`
		Min  float64 `json:"min"`
		Max  float64 `json:"max"  validate:"gtefield=Min"`
	}

	BandTable []Band
)

func DefaultLetterBands() BandTable {
	return BandTable{
		{Name: "A", Min: 90, Max: 100},
		{Name: "B", Min: 80, Max: 90},
		{Name: "C", Min: 70, Max: 80},
		{Name: "D", Min: 60, Max: 70},
		{Name: "F", Min: 0, Max: 60},
	}
}

// Bands ordered by descending lower bound. Ties keep their table order.
func (t BandTable) Ordered() BandTable {
	ordered := make(BandTable, len(t))
	copy(ordered, t)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Min > ordered[j].Min
	})

	return ordered
}

// Name of the band containing score. Where bands share a boundary the band with the higher
// lower bound wins. A score that falls in a gap or outside the table maps to the nearest band,
// preferring the higher one on equal distance.
//
// Returns "" for an empty table.
func (t BandTable) Lookup(score float64) string {
	ordered := t.Ordered()
	for _, b := range ordered {
		if score >= b.Min && score <= b.Max {
			return b.Name
		}
	}

	best := ""
	bestDistance := math.Inf(1)
	for _, b := range ordered {
		distance := math.Max(b.Min-score, score-b.Max)
		if distance < bestDistance {
			bestDistance = distance
			best = b.Name
		}
	}

	return best
}

// Band names in descending order, useful for stable rendering of distributions
func (t BandTable) Names() []string {
	ordered := t.Ordered()
	names := make([]string, 0, len(ordered))
	for _, b := range ordered {
		names = append(names, b.Name)
	}

	return names
}

// Percentage of total, 0 when total is not positive
func Percent(score, total float64) float64 {
	if total <= 0 {
		return 0
	}

	return score / total * 100
}
