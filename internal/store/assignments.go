package store

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autograde/grader/internal/types"
)

var _ AssignmentStore = (*GormAssignmentSource)(nil)

// Grading configs synced from the assignment service into postgres
type GormAssignmentSource struct {
	db *gorm.DB
}

func NewGormAssignmentSource(db *gorm.DB) *GormAssignmentSource {
	return &GormAssignmentSource{db: db}
}

func (s *GormAssignmentSource) GradingConfig(
	ctx context.Context,
	assignmentID string,
) (*types.AssignmentGradingConfig, error) {
	ctx, span := tracer.Start(ctx, "GormAssignmentSource.GradingConfig", trace.WithAttributes(
		attribute.String("assignment.id", assignmentID),
	))
	defer span.End()

	var model assignmentConfigModel
	err := s.db.WithContext(ctx).First(&model, "assignment_id = ?", assignmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "no grading config")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get grading config")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got grading config")
	return model.toConfig(), nil
}

// Insert or replace the grading config of cfg.AssignmentID. The version is bumped on every write.
func (s *GormAssignmentSource) Put(ctx context.Context, cfg *types.AssignmentGradingConfig) error {
	ctx, span := tracer.Start(ctx, "GormAssignmentSource.Put", trace.WithAttributes(
		attribute.String("assignment.id", cfg.AssignmentID),
	))
	defer span.End()

	model := assignmentConfigFrom(cfg)
	model.Version = 1

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"kind":            model.Kind,
			"total_points":    model.TotalPoints,
			"criteria":        model.Criteria,
			"bands":           model.Bands,
			"keywords":        model.Keywords,
			"expected_answer": model.ExpectedAnswer,
			"version":         gorm.Expr("assignment_config.version + 1"),
		}),
	}).Create(model).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upsert grading config")
		return err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "upserted grading config")
	return nil
}
