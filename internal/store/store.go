package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/autograde/grader/internal/types"
)

var tracer = otel.Tracer("github.com/autograde/grader/internal/store")

var (
	ErrNotFound = errors.New("not found")
	ErrReadOnly = errors.New("assignment source is read only")
)

//go:generate mockgen -destination ./mock/mock.go -package mock . AssignmentSource,AssignmentStore,GradeStore

// Read access to assignment grading configuration
type AssignmentSource interface {
	// ErrNotFound when the assignment has no grading config
	GradingConfig(ctx context.Context, assignmentID string) (*types.AssignmentGradingConfig, error)
}

// Grading configs that can also be written, by the assignment service sync
type AssignmentStore interface {
	AssignmentSource
	Put(ctx context.Context, cfg *types.AssignmentGradingConfig) error
}

// Append only grade history with at most one current record per submission
type GradeStore interface {
	// Insert record and supersede the current record of the same submission, atomically.
	// record.ID is assigned when nil.
	Save(ctx context.Context, record *types.GradeRecord) error
	// ErrNotFound when the submission was never graded
	Current(ctx context.Context, submissionID string) (*types.GradeRecord, error)
	// Current records of every submission of the assignment, ordered by student
	ListCurrent(ctx context.Context, assignmentID string) ([]types.GradeRecord, error)
	// Every record of the submission, oldest first
	History(ctx context.Context, submissionID string) ([]types.GradeRecord, error)
}
