package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/autograde/grader/internal/types"
)

var _ GradeStore = (*GormGradeStore)(nil)

type GormGradeStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormGradeStore(db *gorm.DB) *GormGradeStore {
	return &GormGradeStore{db: db, now: time.Now}
}

func (s *GormGradeStore) Save(ctx context.Context, record *types.GradeRecord) error {
	ctx, span := tracer.Start(ctx, "GormGradeStore.Save", trace.WithAttributes(
		attribute.String("submission.id", record.SubmissionID),
		attribute.String("grading.method", string(record.Method)),
	))
	defer span.End()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	span.SetAttributes(attribute.String("record.id", record.ID.String()))

	model := gradeRecordFrom(record)
	model.SupersededAt = datatypes.Null[time.Time]{}
	model.SupersededBy = datatypes.Null[uuid.UUID]{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//nolint:govet // shadow: intentionally shadow ctx and span to avoid using the incorrect one.
		ctx, span := tracer.Start(ctx, "GormGradeStore.Save/Transaction")
		defer span.End()

		tx = tx.WithContext(ctx)

		var current gradeRecordModel
		result := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("submission_id = ? AND superseded_at IS NULL", record.SubmissionID).
			Limit(1).
			Find(&current)
		if result.Error != nil {
			span.RecordError(result.Error)
			span.SetStatus(codes.Error, "failed to lock current record")
			return fmt.Errorf("failed to lock current record: %w", result.Error)
		}

		if result.RowsAffected > 0 {
			span.AddEvent("superseding current record", trace.WithAttributes(
				attribute.String("superseded.id", current.ID.String()),
			))

			update := tx.Model(&gradeRecordModel{}).
				Where("id = ?", current.ID).
				Updates(map[string]any{
					"superseded_at": s.now().UTC(),
					"superseded_by": record.ID,
				})
			if update.Error != nil {
				span.RecordError(update.Error)
				span.SetStatus(codes.Error, "failed to supersede current record")
				return fmt.Errorf("failed to supersede current record: %w", update.Error)
			}
		}

		if err := tx.Create(model).Error; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to insert record")
			return fmt.Errorf("failed to insert record: %w", err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "saved record")
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save record")
		return err
	}

	record.SupersededAt = nil
	record.SupersededBy = nil

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "saved record")
	return nil
}

func (s *GormGradeStore) Current(ctx context.Context, submissionID string) (*types.GradeRecord, error) {
	ctx, span := tracer.Start(ctx, "GormGradeStore.Current", trace.WithAttributes(
		attribute.String("submission.id", submissionID),
	))
	defer span.End()

	var model gradeRecordModel
	err := s.db.WithContext(ctx).
		Where("submission_id = ? AND superseded_at IS NULL", submissionID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "no current record")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get current record")
		return nil, err
	}

	record := model.toRecord()

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got current record")
	return &record, nil
}

func (s *GormGradeStore) ListCurrent(ctx context.Context, assignmentID string) ([]types.GradeRecord, error) {
	ctx, span := tracer.Start(ctx, "GormGradeStore.ListCurrent", trace.WithAttributes(
		attribute.String("assignment.id", assignmentID),
	))
	defer span.End()

	var models []gradeRecordModel
	err := s.db.WithContext(ctx).
		Where("assignment_id = ? AND superseded_at IS NULL", assignmentID).
		Order("student_id, submission_id").
		Find(&models).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list current records")
		return nil, err
	}

	span.SetAttributes(attribute.Int("records", len(models)))
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "listed current records")
	return toRecords(models), nil
}

func (s *GormGradeStore) History(ctx context.Context, submissionID string) ([]types.GradeRecord, error) {
	ctx, span := tracer.Start(ctx, "GormGradeStore.History", trace.WithAttributes(
		attribute.String("submission.id", submissionID),
	))
	defer span.End()

	var models []gradeRecordModel
	err := s.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at, graded_at").
		Find(&models).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get record history")
		return nil, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "got record history")
	return toRecords(models), nil
}

func toRecords(models []gradeRecordModel) []types.GradeRecord {
	records := make([]types.GradeRecord, 0, len(models))
	for i := range models {
		records = append(records, models[i].toRecord())
	}

	return records
}
