package grading

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/types"
)

const DefaultThreshold = 0.5

type Decision struct {
	Method               types.GradingMethod
	RequiresManualReview bool
}

// Decides whether an outcome can be finalized without a reviewer. Pure.
type Router struct {
	kindThresholds map[types.AssignmentKind]float64
	threshold      float64
}

// kindThresholds maps assignment kind names to a threshold overriding the default
func NewRouter(threshold float64, kindThresholds map[string]float64) *Router {
	r := &Router{
		threshold:      threshold,
		kindThresholds: make(map[types.AssignmentKind]float64, len(kindThresholds)),
	}
	for kind, t := range kindThresholds {
		r.kindThresholds[types.AssignmentKindFromString(kind)] = t
	}

	return r
}

func (r *Router) Threshold(kind types.AssignmentKind) float64 {
	if t, ok := r.kindThresholds[kind]; ok {
		return t
	}

	return r.threshold
}

// Confidence at or above the threshold is automated. Empty submissions always wait for a reviewer.
func (r *Router) Route(outcome types.GradingOutcome) Decision {
	if !outcome.Empty && outcome.Confidence >= r.Threshold(outcome.Kind) {
		return Decision{Method: types.GradingMethodAutomated}
	}

	return Decision{Method: types.GradingMethodPendingManual, RequiresManualReview: true}
}

func (d Decision) attributes() trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String("grading.method", string(d.Method)),
		attribute.Bool("requires_manual_review", d.RequiresManualReview),
	)
}
