package scoring

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/scoring")

// The scoring service refused the request, retrying will not help
var ErrRejected = errors.New("scoring request rejected")

//go:generate mockgen -destination ./mock/mock.go -package mock . Scorer

// Opaque scoring capability
type Scorer interface {
	Score(ctx context.Context, req Request) (Result, error)
}

type Request struct {
	Config       types.AssignmentGradingConfig
	SubmissionID string
	Content      string
}

// Raw scorer answer. Extras is kind specific and may be missing or malformed.
type Result struct {
	Breakdown   map[string]float64 `json:"breakdown"`
	Extras      json.RawMessage    `json:"extras,omitempty"`
	Feedback    string             `json:"feedback"`
	Suggestions []string           `json:"suggestions"`
	Score       float64            `json:"score"`
	Confidence  float64            `json:"confidence"`
}
