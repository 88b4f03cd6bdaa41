package store

import (
	"context"

	"github.com/autograde/grader/internal/archive"
	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/upload"
)

var _ GradeStore = (*ArchivingGradeStore)(nil)

// Copies every saved record into object storage after it is committed.
// Archive failures are logged and never fail the save.
type ArchivingGradeStore struct {
	GradeStore
	uploader upload.Uploader
}

func NewArchivingGradeStore(next GradeStore, uploader upload.Uploader) *ArchivingGradeStore {
	return &ArchivingGradeStore{GradeStore: next, uploader: uploader}
}

func (s *ArchivingGradeStore) Save(ctx context.Context, record *types.GradeRecord) error {
	ctx, span := tracer.Start(ctx, "ArchivingGradeStore.Save")
	defer span.End()

	if err := s.GradeStore.Save(ctx, record); err != nil {
		span.RecordError(err)
		return err
	}

	_, err := archive.Record(ctx, audit.Context{AssignmentID: record.AssignmentID}, s.uploader, record)
	if err != nil {
		span.AddEvent("archive failed")
		logger.Component("store").WarnContext(ctx, "failed to archive grade record",
			"recordID", record.ID.String(),
			"submissionID", record.SubmissionID,
			"error", err,
		)
	}

	return nil
}
