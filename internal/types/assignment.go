package types

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Allowed drift between criterion weights and total points
const weightTolerance = 0.01

var (
	ErrNonPositiveTotal = errors.New("total points must be positive")
	ErrWeightMismatch   = errors.New("criterion weights do not sum to total points")
)

// Point allocation and rubric of one assignment. Owned by the assignment service, read-only here.
type AssignmentGradingConfig struct {
	// Criterion name to point weight. Weights sum to TotalPoints.
	Criteria     map[string]float64 `json:"criteria"`
	AssignmentID string             `json:"assignment_id"   validate:"required,numeric"`
	Kind         AssignmentKind     `json:"kind"            validate:"required,oneof=coding essay math other"`
	// Reference solution handed to the scorer
	ExpectedAnswer string `json:"expected_answer,omitempty"`
	// Optional rubric bands expressed in points
	Bands       BandTable `json:"bands,omitempty" validate:"omitempty,dive"`
	Keywords    []string  `json:"keywords,omitempty"`
	TotalPoints float64   `json:"total_points"    validate:"gt=0"`
	Version     int       `json:"version"`
}

func (c *AssignmentGradingConfig) Validate() error {
	if c.TotalPoints <= 0 {
		return ErrNonPositiveTotal
	}

	if len(c.Criteria) == 0 {
		return nil
	}

	sum := 0.0
	for _, weight := range c.Criteria {
		sum += weight
	}

	if math.Abs(sum-c.TotalPoints) > weightTolerance {
		return fmt.Errorf("%w: %.2f != %.2f", ErrWeightMismatch, sum, c.TotalPoints)
	}

	return nil
}

// Criterion names sorted so iteration over the rubric is deterministic
func (c *AssignmentGradingConfig) CriterionNames() []string {
	names := make([]string, 0, len(c.Criteria))
	for name := range c.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Band grade for a clamped score: the rubric bands when present, the default letter table on
// the percentage otherwise
func (c *AssignmentGradingConfig) Grade(score float64) string {
	if len(c.Bands) > 0 {
		return c.Bands.Lookup(score)
	}

	return DefaultLetterBands().Lookup(Percent(score, c.TotalPoints))
}

// Clamp a score into [0, TotalPoints]
func (c *AssignmentGradingConfig) Clamp(score float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > c.TotalPoints {
		return c.TotalPoints
	}

	return score
}
