package grading

import (
	"go.opentelemetry.io/otel"

	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/grading")

// Lifecycle of one grading attempt
type State string

const (
	StateReceived               State = "received"
	StatePreprocessing          State = "preprocessing"
	StateScoring                State = "scoring"
	StateFinalizedAutomated     State = "finalized_automated"
	StateFinalizedPendingManual State = "finalized_pending_manual"
	StateFailed                 State = "failed"
)

func finalState(method types.GradingMethod) State {
	switch method {
	case types.GradingMethodAutomated:
		return StateFinalizedAutomated
	case types.GradingMethodError:
		return StateFailed
	default:
		return StateFinalizedPendingManual
	}
}
