package grading_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/types"
)

func TestRoute(t *testing.T) {
	r := grading.NewRouter(grading.DefaultThreshold, map[string]float64{"coding": 0.7})

	tt := []struct {
		name    string
		outcome types.GradingOutcome
		method  types.GradingMethod
	}{
		{
			name:    "AtThreshold",
			outcome: types.GradingOutcome{Kind: types.AssignmentKindEssay, Confidence: 0.5},
			method:  types.GradingMethodAutomated,
		},
		{
			name:    "BelowThreshold",
			outcome: types.GradingOutcome{Kind: types.AssignmentKindEssay, Confidence: 0.49},
			method:  types.GradingMethodPendingManual,
		},
		{
			name:    "KindOverride",
			outcome: types.GradingOutcome{Kind: types.AssignmentKindCoding, Confidence: 0.6},
			method:  types.GradingMethodPendingManual,
		},
		{
			name:    "KindOverrideMet",
			outcome: types.GradingOutcome{Kind: types.AssignmentKindCoding, Confidence: 0.7},
			method:  types.GradingMethodAutomated,
		},
		{
			name:    "Empty",
			outcome: types.GradingOutcome{Kind: types.AssignmentKindMath, Confidence: 0.9, Empty: true},
			method:  types.GradingMethodPendingManual,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			d := r.Route(tc.outcome)

			assert.Equal(t, tc.method, d.Method)
			assert.Equal(t, tc.method == types.GradingMethodPendingManual, d.RequiresManualReview)
		})
	}
}

func TestRouterThreshold(t *testing.T) {
	r := grading.NewRouter(0.8, map[string]float64{"math": 0.3, "unknown-kind": 0.1})

	assert.InDelta(t, 0.8, r.Threshold(types.AssignmentKindEssay), 1e-9)
	assert.InDelta(t, 0.3, r.Threshold(types.AssignmentKindMath), 1e-9)
	assert.InDelta(t, 0.1, r.Threshold(types.AssignmentKindOther), 1e-9, "unknown kinds map to other")
}
